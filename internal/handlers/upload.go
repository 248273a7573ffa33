package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxImageSize = 5 << 20

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

var allowedImageContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// POST /api/upload
// Stores the image under uploadDir and returns the URL it will be served
// from.
func UploadImage(uploadDir, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/upload"
		defer handlePanic(c, route)

		file, err := c.FormFile("image")
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "image file is required")
			return
		}

		filename, err := saveUploadedImage(file, uploadDir)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		url := strings.TrimRight(publicBaseURL, "/") + "/uploads/" + filename
		log.Println("[UPLOAD] [INFO] image stored:", filename)
		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}

func saveUploadedImage(file *multipart.FileHeader, uploadDir string) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedImageExtensions[extension]; !ok {
		return "", fmt.Errorf("Images Only! unsupported type: %s", extension)
	}
	if file.Size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}

	in, err := file.Open()
	if err != nil {
		log.Printf("[UPLOAD] [ERROR] open upload %s failed: %v", file.Filename, err)
		return "", err
	}
	defer in.Close()

	// The extension is client-controlled; the stored bytes must sniff as an
	// image before anything lands under the public dir.
	head := make([]byte, 512)
	n, err := io.ReadFull(in, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := allowedImageContentTypes[contentType]; !ok {
		return "", fmt.Errorf("Images Only! unsupported content: %s", contentType)
	}

	filename := uuid.NewString() + extension

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Printf("[UPLOAD] [ERROR] create dir %s failed: %v", uploadDir, err)
		return "", err
	}

	fullPath := filepath.Join(uploadDir, filename)
	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] [ERROR] create file %s failed: %v", fullPath, err)
		return "", err
	}

	if _, err := io.Copy(out, io.MultiReader(bytes.NewReader(head), in)); err != nil {
		log.Printf("[UPLOAD] [ERROR] write %s failed: %v", fullPath, err)
		out.Close()
		os.Remove(fullPath)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(fullPath)
		return "", err
	}

	return filename, nil
}
