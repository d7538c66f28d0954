package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"stemhub/storage"

	"github.com/stretchr/testify/require"
)

func TestCheckUpload(t *testing.T) {
	const limit = storage.DefaultMaxUploadSize

	for _, tc := range []struct {
		name        string
		contentType string
		size        int64
		class       string
	}{
		{name: "mpeg", contentType: "audio/mpeg", size: 1024},
		{name: "wav", contentType: "audio/wav", size: 1024},
		{name: "with params", contentType: "audio/mpeg; charset=binary", size: 1024},
		{name: "upper case", contentType: "Audio/WAV", size: 1024},
		{name: "exactly the limit", contentType: "audio/mpeg", size: limit},
		{name: "png", contentType: "image/png", size: 1024, class: "invalid"},
		{name: "empty type", contentType: "", size: 1024, class: "invalid"},
		{name: "x-wav is not accepted", contentType: "audio/x-wav", size: 1024, class: "invalid"},
		{name: "too large", contentType: "audio/wav", size: limit + 1, class: "large"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := storage.CheckUpload(tc.contentType, tc.size, limit)
			switch tc.class {
			case "":
				require.NoError(t, err)
			case "invalid":
				require.True(t, storage.ErrInvalidFileType.Has(err), "got %v", err)
			case "large":
				require.True(t, storage.ErrFileTooLarge.Has(err), "got %v", err)
			}
		})
	}
}

func TestStoredName(t *testing.T) {
	require.Equal(t, "abc-song.mp3", storage.StoredName("abc", "song.mp3"))
	require.Equal(t, "abc-song.mp3", storage.StoredName("abc", "../../etc/song.mp3"))
	require.Equal(t, "abc-song.wav", storage.StoredName("abc", `C:\music\song.wav`))
	require.Equal(t, "abc-audio", storage.StoredName("abc", ""))
	require.Equal(t, "/uploads/track/abc-song.mp3", storage.AudioPath(storage.KindTrack, "abc-song.mp3"))
	require.Equal(t, "/uploads/track/abc-a%23b%3F.mp3", storage.AudioPath(storage.KindTrack, "abc-a#b?.mp3"))
	require.Equal(t, "/uploads/stem/abc-100%25%20mix.wav", storage.AudioPath(storage.KindStem, "abc-100% mix.wav"))
}

func TestTooLargeNamesTheLimit(t *testing.T) {
	require.Equal(t, "50 MiB", storage.FormatSize(storage.DefaultMaxUploadSize))
	require.Equal(t, "1000 bytes", storage.FormatSize(1000))

	err := storage.CheckUpload("audio/wav", 3<<20, 2<<20)
	require.True(t, storage.ErrFileTooLarge.Has(err))
	require.Contains(t, err.Error(), "File too large. The limit is 2 MiB.")
}

func upload(name, contentType string, body []byte) storage.Upload {
	return storage.Upload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}

func TestDiskStoreSave(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := storage.NewDiskStore(root, 0)

	body := bytes.Repeat([]byte{0xff}, 1024)
	path, err := store.Save(ctx, storage.KindTrack, "t1", upload("beat.mp3", "audio/mpeg", body))
	require.NoError(t, err)
	require.Equal(t, "/uploads/track/t1-beat.mp3", path)

	got, err := os.ReadFile(filepath.Join(root, "track", "t1-beat.mp3"))
	require.NoError(t, err)
	require.Equal(t, body, got)

	rc, err := store.Open(ctx, storage.KindTrack, "t1-beat.mp3")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	read, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, body, read)
}

func TestDiskStoreRejectsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := storage.NewDiskStore(root, 16)

	_, err := store.Save(ctx, storage.KindTrack, "t1", upload("cover.png", "image/png", []byte("png")))
	require.True(t, storage.ErrInvalidFileType.Has(err))

	_, err = store.Save(ctx, storage.KindTrack, "t1", upload("big.wav", "audio/wav", make([]byte, 17)))
	require.True(t, storage.ErrFileTooLarge.Has(err))

	_, err = os.Stat(filepath.Join(root, "track"))
	require.True(t, os.IsNotExist(err), "nothing should be written")
}

func TestDiskStoreRejectsUnderstatedSize(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := storage.NewDiskStore(root, 16)

	file := upload("big.wav", "audio/wav", make([]byte, 64))
	file.Size = -1

	_, err := store.Save(ctx, storage.KindStem, "s1", file)
	require.True(t, storage.ErrFileTooLarge.Has(err))

	entries, err := os.ReadDir(filepath.Join(root, "stem"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDiskStoreDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := storage.NewDiskStore(root, 0)

	for _, name := range []string{"one.mp3", "two.wav"} {
		_, err := store.Save(ctx, storage.KindTrack, "t1", upload(name, "audio/mpeg", []byte("x")))
		require.NoError(t, err)
	}
	_, err := store.Save(ctx, storage.KindTrack, "t2", upload("other.mp3", "audio/mpeg", []byte("x")))
	require.NoError(t, err)
	_, err = store.Save(ctx, storage.KindStem, "t1", upload("stem.mp3", "audio/mpeg", []byte("x")))
	require.NoError(t, err)

	removed, err := store.DeleteByPrefix(ctx, storage.KindTrack, "t1")
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	entries, err := os.ReadDir(filepath.Join(root, "track"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "t2-other.mp3", entries[0].Name())

	// other kinds are untouched
	_, err = os.Stat(filepath.Join(root, "stem", "t1-stem.mp3"))
	require.NoError(t, err)

	removed, err = store.DeleteByPrefix(ctx, storage.KindTrack, "t1")
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestDiskStoreDeleteByPrefixWithoutDirectory(t *testing.T) {
	store := storage.NewDiskStore(filepath.Join(t.TempDir(), "missing"), 0)

	removed, err := store.DeleteByPrefix(context.Background(), storage.KindStem, "s1")
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestDiskStoreOpenRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store := storage.NewDiskStore(t.TempDir(), 0)

	for _, name := range []string{"../secret", ".hidden", "a/b", "missing.mp3"} {
		_, err := store.Open(ctx, storage.KindTrack, name)
		require.True(t, storage.ErrNotFound.Has(err), "%s: %v", name, err)
	}

	_, err := store.Open(ctx, "cover", "x.png")
	require.True(t, storage.ErrNotFound.Has(err))
}
