package storage

import (
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // empty for AWS, set for S3 compatible services (path style is used then)
	Key      string
	Secret   string
	Prefix   string // all object keys start with this
}

type S3Storage struct {
	cfg      S3Config
	s3Client *s3.S3
	uploader *s3manager.Uploader
}

func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Key != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.Key, cfg.Secret, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	client := s3.New(sess)
	return &S3Storage{
		cfg:      cfg,
		s3Client: client,
		uploader: s3manager.NewUploaderWithClient(client),
	}, nil
}

func (s *S3Storage) getKey(p string) string {
	if s.cfg.Prefix == "" {
		return p
	}
	return strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + p
}

func (s *S3Storage) Save(p string, reader io.Reader) (int64, error) {
	body := &countingReader{Reader: reader}
	input := s3manager.UploadInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.getKey(p)),
		Body:   body,
	}
	if mimeType := mime.TypeByExtension(strings.ToLower(path.Ext(p))); mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	_, err := s.uploader.Upload(&input)
	return body.n, err
}

func (s *S3Storage) Load(p string, writer io.Writer) (int64, error) {
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.getKey(p)),
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(writer, resp.Body)
}

func (s *S3Storage) Delete(p string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.getKey(p)),
	})
	return err
}

// DeleteDir is a no-op, S3 has no directories
func (s *S3Storage) DeleteDir(dir string) error {
	return nil
}

func (s *S3Storage) GetFreeSpace() uint64 {
	return 0
}

func (s *S3Storage) Describe() string {
	return "s3:" + s.cfg.Bucket + "/" + s.cfg.Prefix
}
