package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"permit-history/internal/domain/permits"
	"permit-history/internal/ports/snapshots"
)

// keyTimeLayout es de ancho fijo: el orden lexicográfico de las claves es el cronológico.
const keyTimeLayout = "20060102T150405.000000000Z"

// fetchConcurrency acota los GetObject simultáneos en FetchAll.
const fetchConcurrency = 8

// objectAPI es el subconjunto del cliente S3 que usa el store.
type objectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // opcional (MinIO)
	Prefix    string
	PathStyle bool

	// Credenciales estáticas opcionales; vacías => cadena por defecto de AWS.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Store guarda un objeto JSON por snapshot: <prefix><captured_at>_<seq>_<id>.json.
// seq es el instante de escritura en nanosegundos, estrictamente creciente dentro del proceso:
// con el mismo captured_at, la clave del último append ordena después.
type Store struct {
	client objectAPI
	bucket string
	prefix string
	now    func() time.Time

	seqMu   sync.Mutex
	lastSeq int64
}

// object es el cuerpo de cada objeto.
type object struct {
	ID         string          `json:"id"`
	CapturedAt time.Time       `json:"captured_at"`
	Data       json.RawMessage `json:"data"`
}

// New crea el store. Sin AccessKeyID usa la cadena de credenciales por defecto de AWS.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newStore(client, cfg.Bucket, cfg.Prefix), nil
}

func newStore(client objectAPI, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *Store) objectKey(snap permits.RawSnapshot, seq int64) string {
	return fmt.Sprintf("%s%s_%020d_%s.json", s.prefix, snap.CapturedAt.UTC().Format(keyTimeLayout), seq, snap.ID)
}

func (s *Store) nextSeq() int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	seq := s.now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

func (s *Store) Append(ctx context.Context, snap permits.RawSnapshot) (permits.RawSnapshot, error) {
	if len(snap.Header) == 0 {
		return permits.RawSnapshot{}, snapshots.ErrInvalidPayload
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = s.now().UTC()
	}

	data, err := snapshots.EncodeRows(snap.Header, snap.Rows)
	if err != nil {
		return permits.RawSnapshot{}, err
	}
	body, err := json.Marshal(object{ID: snap.ID, CapturedAt: snap.CapturedAt.UTC(), Data: data})
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("encode snapshot object: %w", err)
	}

	key := s.objectKey(snap, s.nextSeq())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("put snapshot %s: %w", key, err)
	}
	return snap, nil
}

// FetchAll lista el prefijo (paginando con continuation token) y descarga los objetos en paralelo.
func (s *Store) FetchAll(ctx context.Context) ([]permits.RawSnapshot, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]permits.RawSnapshot, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			snap, err := s.get(gctx, key)
			if err != nil {
				return err
			}
			out[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Las claves ya vienen en orden (captured_at, seq); el sort estable solo mueve objetos
	// subidos a mano con otro nombre y conserva el orden de escritura en los empates.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out, nil
}

func (s *Store) listKeys(ctx context.Context) ([]string, error) {
	var (
		keys  []string
		token *string
	)
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            &s.prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, ".json") {
				keys = append(keys, key)
			}
		}
		if aws.ToBool(page.IsTruncated) && page.NextContinuationToken != nil {
			token = page.NextContinuationToken
			continue
		}
		break
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) get(ctx context.Context, key string) (permits.RawSnapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return permits.RawSnapshot{}, fmt.Errorf("read snapshot %s: %w", key, err)
	}

	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		// objeto ilegible: se entrega sin cabecera y el pipeline lo aparta
		return permits.RawSnapshot{ID: key, CapturedAt: aws.ToTime(out.LastModified).UTC()}, nil
	}
	if obj.ID == "" {
		obj.ID = key
	}
	return snapshots.FromPayload(obj.ID, obj.CapturedAt, obj.Data), nil
}
