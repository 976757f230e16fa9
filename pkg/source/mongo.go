package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/crmmap/pkg/cache"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
)

// Collection names read by MongoSource.
const (
	CompaniesCollection = "companies"
	ClientsCollection   = "clients"
	ProjectsCollection  = "projects"
)

// MongoSource reads snapshots from MongoDB. Clients and projects carry a
// company_id and are returned ordered by position, then id, so client angles
// stay stable between loads. Projects carry the owner name already joined in.
type MongoSource struct {
	db     *mongo.Database
	client *mongo.Client
	logger *log.Logger

	// RetryBase is the first backoff delay for transient network errors.
	RetryBase time.Duration
}

// NewMongoSource connects to uri, verifies the connection and reads from
// database.
func NewMongoSource(ctx context.Context, uri, database string, logger *log.Logger) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MongoSource{
		db:        client.Database(database),
		client:    client,
		logger:    logger,
		RetryBase: 200 * time.Millisecond,
	}, nil
}

// Name implements Source.
func (s *MongoSource) Name() string { return "mongo" }

// Close disconnects from the server.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type companyDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type clientDoc struct {
	ID        string `bson:"_id"`
	CompanyID string `bson:"company_id"`
	Name      string `bson:"name"`
	Status    string `bson:"status,omitempty"`
	OwnerID   string `bson:"owner_id,omitempty"`
	Position  int    `bson:"position,omitempty"`
}

type projectDoc struct {
	ID         string `bson:"_id"`
	CompanyID  string `bson:"company_id"`
	ClientID   string `bson:"client_id,omitempty"`
	Name       string `bson:"name"`
	Status     string `bson:"status,omitempty"`
	OwnerID    string `bson:"owner_id,omitempty"`
	OwnerName  string `bson:"owner_name,omitempty"`
	StageCount int    `bson:"stage_count,omitempty"`
	TodoCount  int    `bson:"todo_count,omitempty"`
	Position   int    `bson:"position,omitempty"`
}

// Load implements Source. Transient network errors are retried with
// backoff; a missing company yields NOT_FOUND.
func (s *MongoSource) Load(ctx context.Context, companyID string) (hierarchy.Tree, error) {
	if err := crmerrors.ValidateID("company", companyID); err != nil {
		return hierarchy.Tree{}, err
	}

	var (
		company  companyDoc
		clients  []clientDoc
		projects []projectDoc
	)
	err := cache.RetryWithBackoff(ctx, s.RetryBase, func() error {
		err := s.db.Collection(CompaniesCollection).FindOne(ctx, bson.M{"_id": companyID}).Decode(&company)
		if err != nil {
			return classify(err)
		}

		byPosition := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
		filter := bson.M{"company_id": companyID}

		cur, err := s.db.Collection(ClientsCollection).Find(ctx, filter, byPosition)
		if err != nil {
			return classify(err)
		}
		clients = clients[:0]
		if err := cur.All(ctx, &clients); err != nil {
			return classify(err)
		}

		cur, err = s.db.Collection(ProjectsCollection).Find(ctx, filter, byPosition)
		if err != nil {
			return classify(err)
		}
		projects = projects[:0]
		return classify(cur.All(ctx, &projects))
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return hierarchy.Tree{}, crmerrors.New(crmerrors.ErrCodeNotFound, "company %q not found", companyID)
		}
		return hierarchy.Tree{}, crmerrors.Wrap(crmerrors.ErrCodeInternal, err, "load company %q", companyID)
	}

	s.logger.Debug("loaded snapshot", "company", companyID, "clients", len(clients), "projects", len(projects))
	return toTree(company, clients, projects), nil
}

// classify marks transient driver errors as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(fmt.Errorf("%w: %w", cache.ErrNetwork, err))
	}
	return err
}

func toTree(company companyDoc, clients []clientDoc, projects []projectDoc) hierarchy.Tree {
	t := hierarchy.Tree{
		Company:  hierarchy.Company{ID: company.ID, Name: company.Name},
		Clients:  make([]hierarchy.Client, 0, len(clients)),
		Projects: make([]hierarchy.Project, 0, len(projects)),
	}
	for _, c := range clients {
		t.Clients = append(t.Clients, hierarchy.Client{
			ID:      c.ID,
			Name:    c.Name,
			Status:  c.Status,
			OwnerID: c.OwnerID,
		})
	}
	for _, p := range projects {
		t.Projects = append(t.Projects, hierarchy.Project{
			ID:         p.ID,
			Name:       p.Name,
			ClientID:   p.ClientID,
			Status:     p.Status,
			OwnerID:    p.OwnerID,
			OwnerName:  p.OwnerName,
			StageCount: p.StageCount,
			TodoCount:  p.TodoCount,
		})
	}
	return t
}

var _ Source = (*MongoSource)(nil)
