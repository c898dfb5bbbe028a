// Package provision downloads the pre-built dataset files from object
// storage. The datasets are published whole; there is no incremental sync.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/quantumgrove/calosync/pkg/config"
	"github.com/quantumgrove/calosync/pkg/log"
)

var logger = log.ForService("provision")

// FetchDatabases downloads both dataset files into the configured data
// directory. Each file is written to a temporary name first and renamed into
// place so a failed download never clobbers a working dataset.
func FetchDatabases(ctx context.Context, cfg *config.Config) error {
	if cfg.S3 == nil || cfg.S3.Bucket == "" {
		return fmt.Errorf("no [s3] section configured; set bucket and keys in the config file")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	downloader := manager.NewDownloader(s3.NewFromConfig(awsCfg))

	targets := []struct {
		key  string
		path string
	}{
		{cfg.S3.FoodKey, cfg.FoodDBPath()},
		{cfg.S3.RecipeKey, cfg.RecipeDBPath()},
	}

	for _, target := range targets {
		if target.key == "" {
			return fmt.Errorf("no object key configured for %s", filepath.Base(target.path))
		}
		if err := fetchObject(ctx, downloader, cfg.S3.Bucket, target.key, target.path); err != nil {
			return err
		}
	}

	return nil
}

func fetchObject(ctx context.Context, downloader *manager.Downloader, bucket, key, path string) error {
	logger.Infof("downloading s3://%s/%s to %s", bucket, key, path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp := path + ".download"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	n, err := downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("downloading s3://%s/%s: %w", bucket, key, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("moving %s into place: %w", tmp, err)
	}

	logger.Infof("downloaded %s (%d bytes)", filepath.Base(path), n)
	return nil
}
