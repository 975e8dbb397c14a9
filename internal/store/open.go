package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/and161185/lovepage/internal/repository/dynamo"
	"github.com/and161185/lovepage/internal/repository/postgres"
)

// Backend names the storage selected by an endpoint scheme.
type Backend string

const (
	BackendNone     Backend = ""
	BackendPostgres Backend = "postgres"
	BackendDynamoDB Backend = "dynamodb"
)

// BackendOf reports which backend an endpoint selects. Unconfigured endpoints select none.
func (c Config) BackendOf() (Backend, error) {
	if !c.Configured() {
		return BackendNone, nil
	}
	u, err := url.Parse(strings.TrimSpace(c.Endpoint))
	if err != nil {
		return BackendNone, fmt.Errorf("store endpoint: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "dynamodb":
		return BackendDynamoDB, nil
	default:
		return BackendNone, fmt.Errorf("store endpoint: unsupported scheme %q", u.Scheme)
	}
}

// Opened bundles the adapter with backend handles other components may share.
type Opened struct {
	Adapter *Adapter
	Backend Backend
	PgPool  *pgxpool.Pool // set for the postgres backend
}

// Open builds an adapter for cfg. An unconfigured cfg returns an unavailable
// adapter without attempting any connection.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*Opened, error) {
	if log == nil {
		log = zap.NewNop()
	}
	backend, err := cfg.BackendOf()
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendNone:
		log.Warn("remote store not configured; shares use self-contained links")
		return &Opened{Adapter: Unavailable(log), Backend: BackendNone}, nil

	case BackendPostgres:
		db, pool, err := postgres.New(ctx, cfg.Endpoint, cfg.Credential)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		a := New(postgres.NewDeclarationRepo(db), cfg.timeout(), log)
		a.closer = db.Close
		return &Opened{Adapter: a, Backend: backend, PgPool: pool}, nil

	case BackendDynamoDB:
		client, table, err := dynamoClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("dynamodb store: %w", err)
		}
		return &Opened{Adapter: New(dynamo.NewDeclarationRepo(client, table), cfg.timeout(), log), Backend: backend}, nil
	}
	return nil, fmt.Errorf("store backend %q not handled", backend)
}

// dynamoClient parses dynamodb://<table>?region=..&endpoint=.. and builds a client.
func dynamoClient(ctx context.Context, cfg Config) (*dynamodb.Client, string, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.Endpoint))
	if err != nil {
		return nil, "", err
	}
	table := u.Host
	if table == "" {
		return nil, "", fmt.Errorf("missing table name in %q", cfg.Endpoint)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region := u.Query().Get("region"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if cfg.Credential != "" {
		key, secret, ok := strings.Cut(cfg.Credential, ":")
		if !ok {
			return nil, "", fmt.Errorf("credential must be ACCESS_KEY:SECRET")
		}
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, "", err
	}

	endpoint := u.Query().Get("endpoint")
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, table, nil
}
