package uploader

import (
	"context"
	"fmt"
	"io"

	"poster_shop/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// AliyunOSSUploader 阿里云 OSS 存储
type AliyunOSSUploader struct {
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		bucket: bucket,
		config: cfg,
	}, nil
}

func (u *AliyunOSSUploader) Save(ctx context.Context, name string, src io.Reader, size int64, contentType string) (string, error) {
	key := "posters/" + name
	err := u.bucket.PutObject(key, src,
		oss.ContentType(contentType),
		oss.ContentLength(size),
		oss.WithContext(ctx),
	)
	if err != nil {
		return "", err
	}

	// 假设 bucket 为公共读或前置 CDN
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, key), nil
}

// Delete OSS 删除不存在的对象同样返回成功
func (u *AliyunOSSUploader) Delete(ctx context.Context, name string) error {
	return u.bucket.DeleteObject("posters/"+name, oss.WithContext(ctx))
}
