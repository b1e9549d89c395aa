package file_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3store/gateway/internal/file"
)

func newService() (*file.Service, *fakeRepo, *fakeStore) {
	repo := newFakeRepo()
	store := newFakeStore()
	return file.NewService(repo, store), repo, store
}

const wallet = "0xabc123"

func upload(t *testing.T, svc *file.Service, owner, filename, content string) *file.File {
	t.Helper()
	_, rec, err := svc.Upload(context.Background(), owner, filename, "text/plain", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	return rec
}

func TestUploadCreatesRecordAndObject(t *testing.T) {
	svc, _, store := newService()

	res, rec, err := svc.Upload(context.Background(), wallet, "report.final.pdf", "application/pdf", 11, strings.NewReader("hello world"))
	require.NoError(t, err)

	assert.Equal(t, "uploads/0xabc123/report.final.pdf", res.Key)
	assert.True(t, store.has(res.Key))

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "report.final.pdf", rec.Filename)
	assert.Equal(t, "pdf", rec.Extension)
	assert.Equal(t, int64(11), rec.Size)
	assert.Equal(t, wallet, rec.WalletAddress)
	assert.Equal(t, res.Key, rec.Path)
	assert.Equal(t, res.Location, rec.URL)
	assert.False(t, rec.IsFolder)
}

func TestUploadCompensatesWhenRecordInsertFails(t *testing.T) {
	svc, repo, store := newService()
	repo.failAll = true

	_, _, err := svc.Upload(context.Background(), wallet, "a.txt", "text/plain", 2, strings.NewReader("hi"))
	require.Error(t, err)

	// The freshly written object must not be left orphaned.
	assert.Equal(t, 0, store.count())
	assert.Equal(t, 0, repo.count())
}

func TestUploadFailsWithoutRecordWhenStoreIsDown(t *testing.T) {
	svc, repo, store := newService()
	store.failPut = true

	_, _, err := svc.Upload(context.Background(), wallet, "a.txt", "text/plain", 2, strings.NewReader("hi"))
	require.Error(t, err)
	assert.Equal(t, 0, repo.count())
}

func TestDownloadRoundTrip(t *testing.T) {
	svc, _, _ := newService()
	rec := upload(t, svc, wallet, "notes.txt", "the quick brown fox")

	got, body, err := svc.Download(context.Background(), rec.ID)
	require.NoError(t, err)
	defer body.Close()

	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, []byte("the quick brown fox"), b)
	assert.Equal(t, "notes.txt", got.Filename)
}

func TestDownloadMissingRecord(t *testing.T) {
	svc, _, _ := newService()
	_, _, err := svc.Download(context.Background(), "no-such-id")
	assert.True(t, svc.IsNotFound(err))
}

func TestDownloadFolderIsNotFound(t *testing.T) {
	svc, _, _ := newService()
	_, rec, err := svc.CreateFolder(context.Background(), wallet, "photos")
	require.NoError(t, err)

	_, _, err = svc.Download(context.Background(), rec.ID)
	assert.True(t, svc.IsNotFound(err))
}

func TestCreateFolder(t *testing.T) {
	svc, _, store := newService()

	res, rec, err := svc.CreateFolder(context.Background(), wallet, "photos")
	require.NoError(t, err)

	assert.Equal(t, "uploads/0xabc123/photos/", res.Key)
	assert.True(t, store.has(res.Key))
	assert.True(t, rec.IsFolder)
	assert.Equal(t, "photos", rec.Filename)

	files, err := svc.ListByWallet(context.Background(), wallet)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, files[0].IsFolder)
	assert.Equal(t, "photos", files[0].Filename)
}

func TestCreateFolderCompensatesWhenRecordInsertFails(t *testing.T) {
	svc, repo, store := newService()
	repo.failAll = true

	_, _, err := svc.CreateFolder(context.Background(), wallet, "photos")
	require.Error(t, err)
	assert.Equal(t, 0, store.count())
}

func TestTotalSizeSumsNonFolderRecordsOnly(t *testing.T) {
	svc, _, _ := newService()
	upload(t, svc, wallet, "a.txt", "12345")
	upload(t, svc, wallet, "b.txt", "1234567")
	upload(t, svc, "0xother", "c.txt", "123")
	_, _, err := svc.CreateFolder(context.Background(), wallet, "photos")
	require.NoError(t, err)

	total, err := svc.TotalSize(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func TestTotalSizeZeroForEmptyWallet(t *testing.T) {
	svc, _, _ := newService()
	total, err := svc.TotalSize(context.Background(), "0xnobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestDeleteRemovesObjectAndRecord(t *testing.T) {
	svc, repo, store := newService()
	rec := upload(t, svc, wallet, "a.txt", "hi")

	require.NoError(t, svc.Delete(context.Background(), wallet, "a.txt"))
	assert.False(t, store.has(rec.Path))
	assert.Equal(t, 0, repo.count())
}

func TestDeleteMissingRecordLeavesStoreUntouched(t *testing.T) {
	svc, _, store := newService()
	upload(t, svc, wallet, "a.txt", "hi")

	err := svc.Delete(context.Background(), wallet, "missing.txt")
	assert.True(t, svc.IsNotFound(err))
	assert.Equal(t, 1, store.count())
}

func TestDeleteIsWalletScoped(t *testing.T) {
	svc, _, _ := newService()
	upload(t, svc, wallet, "shared-name.txt", "mine")
	other := upload(t, svc, "0xother", "shared-name.txt", "theirs")

	require.NoError(t, svc.Delete(context.Background(), wallet, "shared-name.txt"))

	// The other wallet's file with the same name survives.
	got, err := svc.Get(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xother", got.WalletAddress)
}

func TestDeleteKeepsRecordWhenObjectDeleteFails(t *testing.T) {
	svc, repo, store := newService()
	upload(t, svc, wallet, "a.txt", "hi")
	store.failDelete = true

	err := svc.Delete(context.Background(), wallet, "a.txt")
	require.Error(t, err)
	assert.Equal(t, 1, repo.count())
}

func TestDeleteManyMixedIdsSkipsUnknown(t *testing.T) {
	svc, repo, store := newService()
	a := upload(t, svc, wallet, "a.txt", "aa")
	b := upload(t, svc, wallet, "b.txt", "bb")

	err := svc.DeleteMany(context.Background(), []string{a.ID, "no-such-id", b.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, 0, repo.count())
	assert.Equal(t, 0, store.count())
}

func TestDeleteManyFailureIsNotSilentlySuccessful(t *testing.T) {
	svc, _, store := newService()
	a := upload(t, svc, wallet, "a.txt", "aa")
	store.failDelete = true

	err := svc.DeleteMany(context.Background(), []string{a.ID}, "")
	require.Error(t, err)
}

func TestDeleteManySkipsForeignWalletWhenOwnerSet(t *testing.T) {
	svc, repo, _ := newService()
	mine := upload(t, svc, wallet, "a.txt", "aa")
	theirs := upload(t, svc, "0xother", "b.txt", "bb")

	err := svc.DeleteMany(context.Background(), []string{mine.ID, theirs.ID}, wallet)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), mine.ID)
	assert.True(t, svc.IsNotFound(err))
	_, err = svc.Get(context.Background(), theirs.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.count())
}

func TestListByWalletEmpty(t *testing.T) {
	svc, _, _ := newService()
	files, err := svc.ListByWallet(context.Background(), "0xnobody")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUploadSameFilenameTwiceOverwritesObjectNotRecord(t *testing.T) {
	svc, repo, store := newService()
	upload(t, svc, wallet, "a.txt", "v1")
	upload(t, svc, wallet, "a.txt", "v2")

	// Two records share one object key; the bytes are the latest write.
	assert.Equal(t, 2, repo.count())
	assert.Equal(t, 1, store.count())

	body, err := store.Fetch(context.Background(), file.ObjectKey(wallet, "a.txt"))
	require.NoError(t, err)
	defer body.Close()
	b, _ := io.ReadAll(body)
	assert.True(t, bytes.Equal(b, []byte("v2")))
}
