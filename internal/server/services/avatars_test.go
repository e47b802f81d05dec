package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubS3 replaces the AWS seams for the duration of the test and records
// the presigned object keys.
func stubS3(t *testing.T) *[]string {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
			t.Fatalf("BaseEndpoint not applied")
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }

	var keys []string
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		keys = append(keys, *in.Key)
		return &v4.PresignedHTTPRequest{URL: "http://s3/put/" + *in.Key}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		keys = append(keys, *in.Key)
		return &v4.PresignedHTTPRequest{URL: "http://s3/get/" + *in.Key}, nil
	}
	return &keys
}

func TestAvatarUploadThenDownload(t *testing.T) {
	f := newFixture(t)
	keys := stubS3(t)
	id := f.register(t, "ana@x.com", "1234567890", "secret1")

	svc := NewAvatarService(f.db, f.repos, f.cfg)
	now := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.DownloadURL(t.Context(), id)
	requireCategory(t, err, goerrors.CategoryNotFound)

	up, err := svc.UploadURL(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Key, "avatars/"+id+"/2026/07/04/"), up.Key)
	assert.Equal(t, "http://s3/put/"+up.Key, up.URL)
	assert.Equal(t, now.Add(15*time.Minute), up.ExpiresAt)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err = newAccountService(f).UpdateProfile(t.Context(), id, ProfileUpdate{Avatar: &up.Key})
	require.NoError(t, err)

	link, err := svc.DownloadURL(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "http://s3/get/"+up.Key, link.URL)
	assert.Equal(t, []string{up.Key, up.Key}, *keys)
}

func TestAvatarDownload_ForeignKeyHasNoLink(t *testing.T) {
	f := newFixture(t)
	stubS3(t)
	id := f.register(t, "ana@x.com", "1234567890", "secret1")

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := newAccountService(f).UpdateProfile(t.Context(), id, ProfileUpdate{Avatar: ptr("avatars/someone-else/x.png")})
	require.NoError(t, err)

	_, err = NewAvatarService(f.db, f.repos, f.cfg).DownloadURL(t.Context(), id)
	requireCategory(t, err, goerrors.CategoryNotFound)
}

func TestAvatarUpload_Errors(t *testing.T) {
	f := newFixture(t)
	stubS3(t)
	svc := NewAvatarService(f.db, f.repos, f.cfg)

	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}
	_, err := svc.UploadURL(t.Context(), "u1")
	assert.ErrorContains(t, err, "presign-put-fail")

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}
	_, err = svc.UploadURL(t.Context(), "u1")
	assert.ErrorContains(t, err, "no creds")
}
