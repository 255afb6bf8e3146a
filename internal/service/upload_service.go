package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// MaxUploadSize 单个文件上限 5 MB
const MaxUploadSize int64 = 5 << 20

var (
	ErrUploadTooLarge       = errors.New("file too large")
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	ErrUploadCorrupt        = errors.New("file content does not match its type")
)

// 允许的 MIME 类型；format 为空表示不按位图解码校验
var uploadTypes = map[string]struct {
	ext    string
	format string
}{
	"image/jpeg":    {ext: "jpg", format: "jpeg"},
	"image/png":     {ext: "png", format: "png"},
	"image/gif":     {ext: "gif", format: "gif"},
	"image/webp":    {ext: "webp", format: "webp"},
	"image/svg+xml": {ext: "svg"},
}

// UploadResult 上传成功后返回给前端的地址。
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadService 校验并保存图片到本地目录。
type UploadService struct {
	dir     string
	urlPath string
	maxSize int64
	now     func() time.Time
}

// NewUploadService 构造 UploadService，urlPath 为静态文件对外路径前缀。
func NewUploadService(dir, urlPath string) *UploadService {
	return &UploadService{
		dir:     dir,
		urlPath: "/" + strings.Trim(urlPath, "/"),
		maxSize: MaxUploadSize,
		now:     time.Now,
	}
}

// Dir 返回上传目录。
func (s *UploadService) Dir() string {
	return s.dir
}

// Save 校验声明的类型与实际内容后写入磁盘。size 为客户端声明的大小，<0 表示未知。
func (s *UploadService) Save(r io.Reader, size int64, contentType string) (UploadResult, error) {
	if size > s.maxSize {
		return UploadResult{}, ErrUploadTooLarge
	}

	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	kind, ok := uploadTypes[mediaType]
	if !ok {
		return UploadResult{}, ErrUploadTypeNotAllowed
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return UploadResult{}, ErrUploadTooLarge
	}
	if err := validateImage(data, kind.format); err != nil {
		return UploadResult{}, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return UploadResult{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), randomSuffix(), kind.ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return UploadResult{}, fmt.Errorf("save upload: %w", err)
	}

	return UploadResult{
		URL:      path.Join(s.urlPath, name),
		Filename: name,
	}, nil
}

func validateImage(data []byte, format string) error {
	if format == "" {
		if !bytes.Contains(bytes.ToLower(data), []byte("<svg")) {
			return ErrUploadCorrupt
		}
		return nil
	}

	cfg, decoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || decoded != format {
		return ErrUploadCorrupt
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrUploadCorrupt
	}
	return nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
