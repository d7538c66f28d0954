package storage_test

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"stemhub/config"
	"stemhub/storage"

	"github.com/stretchr/testify/require"
)

// fakeS3 answers the handful of S3 calls MinioStore makes, path-style, for
// a single bucket.
type fakeS3 struct {
	bucket string

	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

type listEntry struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

type listResult struct {
	XMLName     xml.Name    `xml:"http://s3.amazonaws.com/doc/2006-03-01/ ListBucketResult"`
	Name        string      `xml:"Name"`
	Prefix      string      `xml:"Prefix"`
	KeyCount    int         `xml:"KeyCount"`
	MaxKeys     int         `xml:"MaxKeys"`
	IsTruncated bool        `xml:"IsTruncated"`
	Contents    []listEntry `xml:"Contents"`
}

type s3Error struct {
	XMLName    xml.Name `xml:"Error"`
	Code       string   `xml:"Code"`
	Message    string   `xml:"Message"`
	Key        string   `xml:"Key"`
	BucketName string   `xml:"BucketName"`
	RequestID  string   `xml:"RequestId"`
}

const fakeETag = `"d41d8cd98f00b204e9800998ecf8427e"`

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rest, ok := strings.CutPrefix(r.URL.Path, "/"+f.bucket)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	key := strings.TrimPrefix(rest, "/")

	switch {
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodGet:
		f.list(w, r.URL.Query().Get("prefix"))
	case r.Method == http.MethodPut:
		_, _ = io.Copy(io.Discard, r.Body)
		f.objects[key] = nil
		w.Header().Set("ETag", fakeETag)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		f.deleted = append(f.deleted, key)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		data, found := f.objects[key]
		if !found {
			f.noSuchKey(w, r, key)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("ETag", fakeETag)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := listResult{Name: f.bucket, Prefix: prefix, KeyCount: len(keys), MaxKeys: 1000}
	for _, k := range keys {
		result.Contents = append(result.Contents, listEntry{
			Key:          k,
			LastModified: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
			ETag:         fakeETag,
			Size:         int64(len(f.objects[k])),
			StorageClass: "STANDARD",
		})
	}
	writeXML(w, http.StatusOK, result)
}

func (f *fakeS3) noSuchKey(w http.ResponseWriter, r *http.Request, key string) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeXML(w, http.StatusNotFound, s3Error{
		Code:       "NoSuchKey",
		Message:    "The specified key does not exist.",
		Key:        key,
		BucketName: f.bucket,
		RequestID:  "fake",
	})
}

func writeXML(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	_ = xml.NewEncoder(&buf).Encode(v)
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newMinioStore(t *testing.T, objects map[string][]byte) (*storage.MinioStore, *fakeS3) {
	t.Helper()

	fake := &fakeS3{bucket: "stemhub", objects: objects}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := storage.NewMinioStore(context.Background(), &config.Config{
		MinioEndpoint:  strings.TrimPrefix(srv.URL, "http://"),
		MinioAccessKey: "access",
		MinioSecretKey: "secret",
		MinioBucket:    "stemhub",
		MinioRegion:    "us-east-1",
		MaxUploadSize:  1 << 20,
	})
	require.NoError(t, err)
	return store, fake
}

func TestMinioDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	store, fake := newMinioStore(t, map[string][]byte{
		"track/abc-one.mp3":  []byte("1"),
		"track/abc-two.wav":  []byte("2"),
		"track/abcd-xyz.mp3": []byte("3"),
		"stem/abc-lead.wav":  []byte("4"),
	})

	removed, err := store.DeleteByPrefix(ctx, storage.KindTrack, "abc")
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.ElementsMatch(t, []string{"track/abc-one.mp3", "track/abc-two.wav"}, fake.deleted)
	require.Equal(t, []string{"stem/abc-lead.wav", "track/abcd-xyz.mp3"}, fake.keys())

	removed, err = store.DeleteByPrefix(ctx, storage.KindTrack, "nobody")
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestMinioOpen(t *testing.T) {
	ctx := context.Background()
	store, _ := newMinioStore(t, map[string][]byte{
		"track/abc-one.mp3": []byte("ID3 audio"),
	})

	rc, err := store.Open(ctx, storage.KindTrack, "abc-one.mp3")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "ID3 audio", string(data))

	_, err = store.Open(ctx, storage.KindTrack, "abc-missing.mp3")
	require.True(t, storage.ErrNotFound.Has(err), "got %v", err)

	_, err = store.Open(ctx, "cover", "abc-one.mp3")
	require.True(t, storage.ErrNotFound.Has(err))
}

func TestMinioSave(t *testing.T) {
	ctx := context.Background()
	store, fake := newMinioStore(t, map[string][]byte{})

	body := []byte("RIFF....WAVE")
	audioPath, err := store.Save(ctx, storage.KindStem, "s1", upload("lead.wav", "audio/wav", body))
	require.NoError(t, err)
	require.Equal(t, "/uploads/stem/s1-lead.wav", audioPath)
	require.Equal(t, []string{"stem/s1-lead.wav"}, fake.keys())

	_, err = store.Save(ctx, storage.KindStem, "s1", upload("cover.png", "image/png", []byte("png")))
	require.True(t, storage.ErrInvalidFileType.Has(err))

	_, err = store.Save(ctx, storage.KindStem, "s1", upload("big.wav", "audio/wav", make([]byte, 2<<20)))
	require.True(t, storage.ErrFileTooLarge.Has(err))
	require.Equal(t, []string{"stem/s1-lead.wav"}, fake.keys(), "rejected uploads are not stored")
}
