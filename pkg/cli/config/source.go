package config

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/utils/safe"
)

const gcsScheme = "gs://"

// readSource reads a configuration document from a local path or a gs://bucket/object location
func readSource(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, gcsScheme) {
		return readGCS(ctx, location)
	}
	if strings.Contains(location, "://") {
		return nil, goerr.Wrap(ErrUnsupportedLocation, "only local paths and gs:// are supported",
			goerr.V(ConfigPathKey, location))
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, location))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, location))
	}
	return data, nil
}

func parseGCSLocation(location string) (bucket, object string, err error) {
	path := strings.TrimPrefix(location, gcsScheme)
	bucket, object, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", goerr.Wrap(ErrUnsupportedLocation, "gs:// location must name a bucket and an object",
			goerr.V(ConfigPathKey, location))
	}
	return bucket, object, nil
}

func readGCS(ctx context.Context, location string) ([]byte, error) {
	bucket, object, err := parseGCSLocation(location)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cloud storage client")
	}
	defer safe.Close(ctx, client)

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config object does not exist", goerr.V(ConfigPathKey, location))
		}
		return nil, goerr.Wrap(err, "failed to open config object", goerr.V(ConfigPathKey, location))
	}
	defer safe.Close(ctx, reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config object", goerr.V(ConfigPathKey, location))
	}
	return data, nil
}
