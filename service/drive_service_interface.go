package service

import "context"

// DriveImage is an image file found in a Drive folder
type DriveImage struct {
	FileID   string
	Name     string
	MimeType string
}

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	ListImages(ctx context.Context, folderID string) ([]DriveImage, error)
	DownloadImage(ctx context.Context, fileID string) ([]byte, error)
}
