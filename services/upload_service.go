package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/akinalp/pazar/pkg"
)

// UploadURLPrefix, yüklenen dosyaların servis edildiği URL ön eki.
const UploadURLPrefix = "/api/uploads/"

// UploadService, görsel yükleme iş mantığı interface'i.
//
// Ürün görselleri, mağaza logo/banner'ları, marka logoları, kategori görselleri
// ve avatarlar hepsi buradan geçer. Kayıt (DB satırı) çağıran service'in işidir;
// UploadService sadece dosyayı diske yazar ve URL döner.
type UploadService interface {
	// SaveImage, dosyayı doğrular, diske yazar ve public URL'ini döner.
	SaveImage(file multipart.File, header *multipart.FileHeader) (string, error)
	// Remove, SaveImage'ın döndüğü URL'e ait dosyayı siler. Hata loglanır, dönmez.
	Remove(url string)
}

type uploadService struct {
	uploadDir string
	maxSize   int64
}

// NewUploadService, constructor. uploadDir'in var olduğu varsayılır.
func NewUploadService(uploadDir string, maxSize int64) UploadService {
	return &uploadService{
		uploadDir: uploadDir,
		maxSize:   maxSize,
	}
}

// allowedImageTypes, yüklemeye izin verilen içerik türleri ve diskteki uzantıları.
//
// Tür, client'ın gönderdiği Content-Type'tan değil dosyanın ilk byte'larından
// (http.DetectContentType) belirlenir — uzantısı .jpg olan bir HTML dosyası reddedilir.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *uploadService) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	// Boyut kontrolü
	if header.Size > s.maxSize {
		return "", s.tooLarge()
	}

	// İçerik türü tespiti — DetectContentType en fazla 512 byte okur.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: file is empty", pkg.ErrBadRequest)
	}

	contentType := http.DetectContentType(head[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: file type not allowed: %s", pkg.ErrBadRequest, contentType)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	// Orijinal dosya adı kullanılmaz — path traversal ve çakışma derdi yok.
	diskFilename := uuid.NewString() + ext
	destPath := filepath.Join(s.uploadDir, diskFilename)

	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer destFile.Close()

	// header.Size client beyanıdır; gerçek boyut kopyalarken sınırlanır.
	written, err := io.Copy(destFile, io.LimitReader(file, s.maxSize+1))
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(destPath)
		return "", s.tooLarge()
	}

	return UploadURLPrefix + diskFilename, nil
}

func (s *uploadService) Remove(url string) {
	if !strings.HasPrefix(url, UploadURLPrefix) {
		return
	}
	name := filepath.Base(strings.TrimPrefix(url, UploadURLPrefix))
	if name == "." || name == "/" || name == ".." {
		return
	}

	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("[upload] failed to remove %s: %v", name, err)
	}
}

func (s *uploadService) tooLarge() error {
	return fmt.Errorf("%w: file too large (max %s)", pkg.ErrBadRequest, humanize.Bytes(uint64(s.maxSize)))
}
