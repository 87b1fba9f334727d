package output

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadSink receives a pipeline's final (optionally compressed) byte
// stream along with the MD5 of its uncompressed form, computed ahead of
// compression so the remote side can verify payload integrity
// independent of the wire encoding.
type UploadSink interface {
	Upload(payload []byte, uncompressedMD5 string) error
}

// S3UploadSink uploads a pipeline's output as one object per emission,
// using the S3 multipart-upload manager to split the payload into
// 256 KiB-aligned parts the way the resumable chunked-PUT protocol
// chunks an upload session.
type S3UploadSink struct {
	Client *s3.Client
	Bucket string
	// KeyFor names the object for one upload, given the uncompressed
	// payload's MD5 (used as a stable, content-addressed object key
	// component).
	KeyFor func(uncompressedMD5 string) string
}

// MinPartSize is the smallest part size manager.Uploader is configured
// with, matching the 256 KiB chunk alignment the resumable-session
// protocol requires.
const MinPartSize = 256 * 1024

// NewS3UploadSink builds an S3UploadSink uploading into bucket via
// client.
func NewS3UploadSink(client *s3.Client, bucket string, keyFor func(string) string) *S3UploadSink {
	return &S3UploadSink{Client: client, Bucket: bucket, KeyFor: keyFor}
}

// Upload uploads payload as a single object, attaching uncompressedMD5
// as object metadata so a downstream verifier can check it against the
// decompressed body without re-deriving it.
func (s *S3UploadSink) Upload(payload []byte, uncompressedMD5 string) error {
	uploader := manager.NewUploader(s.Client, func(u *manager.Uploader) {
		u.PartSize = MinPartSize
	})
	key := uncompressedMD5
	if s.KeyFor != nil {
		key = s.KeyFor(uncompressedMD5)
	}
	_, err := uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
		Metadata: map[string]string{
			"uncompressed-md5": uncompressedMD5,
		},
	})
	return err
}
