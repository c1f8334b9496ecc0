package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permit-history/internal/domain/permits"
	"permit-history/internal/ports/snapshots"
)

// fakeObjects implementa objectAPI en memoria; pagina de pageSize en pageSize.
type fakeObjects struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	lists    int
}

func newFakeObjects(pageSize int) *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, pageSize: pageSize}
}

func (f *fakeObjects) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body)), LastModified: aws.Time(time.Now())}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func TestStore_AppendAndFetchAllPaginates(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjects(2)
	store := newStore(fake, "ledger", "snapshots/")

	base := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	for _, day := range []int{3, 0, 4, 1, 2} {
		_, err := store.Append(ctx, permits.RawSnapshot{
			CapturedAt: base.AddDate(0, 0, day),
			Header:     []string{"Solicitud", "Status de usuario"},
			Rows:       [][]any{{"100", "APRO"}},
		})
		require.NoError(t, err)
	}
	fake.objects["snapshots/README.txt"] = []byte("ignored")

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, 3, fake.lists, "5 objects + 1 ignored in pages of 2")
	for i, snap := range all {
		assert.True(t, snap.CapturedAt.Equal(base.AddDate(0, 0, i)), "snapshot %d out of order", i)
		assert.Equal(t, []string{"Solicitud", "Status de usuario"}, snap.Header)
		assert.NotEmpty(t, snap.ID)
	}
}

func TestStore_ObjectKeyIsChronological(t *testing.T) {
	store := newStore(newFakeObjects(10), "ledger", "p/")
	a := store.objectKey(permits.RawSnapshot{ID: "x", CapturedAt: time.Date(2026, 1, 9, 23, 0, 0, 0, time.UTC)}, 900)
	b := store.objectKey(permits.RawSnapshot{ID: "a", CapturedAt: time.Date(2026, 1, 10, 1, 0, 0, 5, time.UTC)}, 1)
	assert.Less(t, a, b)
	assert.Equal(t, "p/20260109T230000.000000000Z_00000000000000000900_x.json", a)

	// mismo captured_at: decide el orden de escritura, no el id
	c := store.objectKey(permits.RawSnapshot{ID: "zzz", CapturedAt: time.Date(2026, 1, 9, 23, 0, 0, 0, time.UTC)}, 10)
	d := store.objectKey(permits.RawSnapshot{ID: "aaa", CapturedAt: time.Date(2026, 1, 9, 23, 0, 0, 0, time.UTC)}, 11)
	assert.Less(t, c, d)
}

func TestStore_NextSeqIsStrictlyIncreasing(t *testing.T) {
	store := newStore(newFakeObjects(10), "ledger", "")
	fixed := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	a, b := store.nextSeq(), store.nextSeq()
	assert.Equal(t, fixed.UnixNano(), a)
	assert.Equal(t, a+1, b)
}

func TestStore_SameCaptureTimeLaterAppendWins(t *testing.T) {
	ctx := context.Background()
	captured := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	header := []string{"Solicitud", "Status de usuario"}

	for i := 0; i < 20; i++ {
		store := newStore(newFakeObjects(1), "ledger", "snapshots/")
		_, err := store.Append(ctx, permits.RawSnapshot{CapturedAt: captured, Header: header, Rows: [][]any{{"100", "APRO"}}})
		require.NoError(t, err)
		_, err = store.Append(ctx, permits.RawSnapshot{CapturedAt: captured, Header: header, Rows: [][]any{{"100", "AUTO"}}})
		require.NoError(t, err)

		all, err := store.FetchAll(ctx)
		require.NoError(t, err)
		h := permits.BuildHistory(all, permits.NewNormalizer())
		require.Len(t, h.Sequence, 1)
		assert.Equal(t, permits.StatusAuthorized, h.Sequence[0].Entities["100"].Status, "run %d", i)
	}
}

func TestStore_AppendRejectsEmptyHeader(t *testing.T) {
	store := newStore(newFakeObjects(10), "ledger", "")
	_, err := store.Append(context.Background(), permits.RawSnapshot{})
	assert.ErrorIs(t, err, snapshots.ErrInvalidPayload)
}

func TestStore_UnreadableObjectIsKeptWithoutHeader(t *testing.T) {
	fake := newFakeObjects(10)
	fake.objects["snapshots/broken.json"] = []byte("{")
	store := newStore(fake, "ledger", "snapshots/")

	all, err := store.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "snapshots/broken.json", all[0].ID)
	assert.Nil(t, all[0].Header)
}
