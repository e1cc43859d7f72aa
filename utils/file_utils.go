package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// Base directory for storing uploaded files
	uploadBaseDir = "uploads"
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum file size (10MB)
	maxFileSize = 10 * 1024 * 1024
	// Item pictures are scaled down to this width
	itemImageWidth = 800
)

var (
	allowedImageExts = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	}
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// cleanFilename removes any potentially dangerous characters from the filename
func cleanFilename(filename string) string {
	filename = filepath.Base(filename)
	return unsafeFilenameChars.ReplaceAllString(filename, "")
}

// ValidateImageType checks the file extension against the supported raster formats
func ValidateImageType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return fmt.Errorf("unsupported image format. Allowed formats: jpg, jpeg, png, gif")
	}
	return nil
}

// InitializeStorage creates necessary directories for file storage
func InitializeStorage(root string) error {
	if root == "" {
		root = uploadBaseDir
	}
	for _, dir := range []string{root, filepath.Join(root, "items")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}

// SaveItemImage decodes an uploaded picture, resizes it to a fixed width
// keeping the aspect ratio and stores it as JPEG under root/items.
// The returned URL is relative to the server.
func SaveItemImage(root string, data []byte, filename, itemID string) (string, error) {
	if root == "" {
		root = uploadBaseDir
	}
	if len(data) > maxFileSize {
		return "", fmt.Errorf("file too large. Maximum size is %d bytes", maxFileSize)
	}
	if err := ValidateImageType(cleanFilename(filename)); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}
	if img.Bounds().Dx() > itemImageWidth {
		img = imaging.Resize(img, itemImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image: %v", err)
	}

	name := cleanFilename(itemID) + ".jpg"
	fullPath := filepath.Join(root, "items", name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}

	return fmt.Sprintf("%s/items/%s", baseURL, name), nil
}
