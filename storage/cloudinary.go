package storage

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Media uploads (listing photos, identity documents) go to Cloudinary.
// Configured via CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY,
// CLOUDINARY_API_SECRET and the optional CLOUDINARY_FOLDER.

var cld *cloudinary.Cloudinary

func InitializeCloudinary() {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		log.Println("Warning: Cloudinary env vars missing, media uploads disabled")
		return
	}

	var err error
	cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		log.Panic("error initializing cloudinary: " + err.Error())
	}
}

func folderPublicID(publicID string) string {
	if folder := os.Getenv("CLOUDINARY_FOLDER"); folder != "" {
		return folder + "/" + publicID
	}
	return publicID
}

// UploadBase64Image uploads a data-URI or raw base64 image and returns its
// secure URL, or "" on failure.
func UploadBase64Image(base64ImageSrc string, publicID string) string {
	if cld == nil || base64ImageSrc == "" {
		return ""
	}

	resp, err := cld.Upload.Upload(context.Background(), base64ImageSrc, uploader.UploadParams{
		PublicID: folderPublicID(publicID),
	})
	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		return ""
	}
	return resp.SecureURL
}

// UploadDocument streams a multipart file (e.g. an NID scan) to Cloudinary
// and returns its secure URL.
func UploadDocument(file io.Reader, publicID string) (string, error) {
	if cld == nil {
		return "", nil
	}

	resp, err := cld.Upload.Upload(context.Background(), file, uploader.UploadParams{
		PublicID: folderPublicID(publicID),
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}

// DeleteImage removes an uploaded asset by public id; best effort.
func DeleteImage(publicID string) {
	if cld == nil {
		return
	}
	_, err := cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: folderPublicID(publicID),
	})
	if err != nil {
		log.Printf("cloudinary destroy failed: %v", err)
	}
}
