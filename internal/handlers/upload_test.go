package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func multipartImageHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("creating form file failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file failed: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parsing multipart form failed: %v", err)
	}

	files := req.MultipartForm.File["image"]
	if len(files) != 1 {
		t.Fatalf("expected one file, got %d", len(files))
	}
	return files[0]
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir failed: %v", err)
	}
	return entries
}

func TestSaveUploadedImageRejectsExtension(t *testing.T) {
	for _, name := range []string{"avatar.gif", "avatar.svg", "avatar.exe", "avatar"} {
		t.Run(name, func(t *testing.T) {
			header := multipartImageHeader(t, name, pngMagic)
			_, err := saveUploadedImage(header, t.TempDir())
			if err == nil {
				t.Fatal("expected an error for disallowed extension")
			}
			if !strings.Contains(err.Error(), "Images Only!") {
				t.Fatalf("unexpected error message: %v", err)
			}
		})
	}
}

func TestSaveUploadedImageRejectsNonImageContent(t *testing.T) {
	dir := t.TempDir()
	header := multipartImageHeader(t, "innocent.png", []byte("#!/bin/sh\nrm -rf /\n"))

	_, err := saveUploadedImage(header, dir)
	if err == nil {
		t.Fatal("expected an error for non-image bytes")
	}
	if !strings.Contains(err.Error(), "Images Only!") {
		t.Fatalf("unexpected error message: %v", err)
	}
	if entries := dirEntries(t, dir); len(entries) != 0 {
		t.Fatalf("expected nothing stored, found %d entries", len(entries))
	}
}

func TestSaveUploadedImageRejectsOversized(t *testing.T) {
	header := multipartImageHeader(t, "big.jpg", pngMagic)
	header.Size = maxImageSize + 1

	_, err := saveUploadedImage(header, t.TempDir())
	if err == nil {
		t.Fatal("expected an error for oversized image")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestSaveUploadedImageStoresFullContent(t *testing.T) {
	// Content longer than the sniff window, so the sniffed head and the
	// remainder must both end up in the stored file.
	content := append(append([]byte{}, pngMagic...), bytes.Repeat([]byte{0xab}, 700)...)
	dir := t.TempDir()
	header := multipartImageHeader(t, "photo.JPG", content)

	// PNG bytes under a .jpg name still pass; both sides of the check are
	// image types and the original backend never cross-checked them.
	filename, err := saveUploadedImage(header, dir)
	if err != nil {
		t.Fatalf("saveUploadedImage returned error: %v", err)
	}
	if !strings.HasSuffix(filename, ".jpg") {
		t.Fatalf("expected lowercase .jpg suffix, got %q", filename)
	}

	stored, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("reading stored file failed: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Fatalf("stored %d bytes, expected %d matching bytes", len(stored), len(content))
	}
}

func TestSaveUploadedImageAcceptsJPEG(t *testing.T) {
	jpegMagic := []byte{0xff, 0xd8, 0xff, 0xe0}
	dir := t.TempDir()
	header := multipartImageHeader(t, "photo.jpeg", jpegMagic)

	filename, err := saveUploadedImage(header, dir)
	if err != nil {
		t.Fatalf("saveUploadedImage returned error: %v", err)
	}
	if entries := dirEntries(t, dir); len(entries) != 1 || entries[0].Name() != filename {
		t.Fatalf("expected %q stored, got %v", filename, entries)
	}
}
