package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/citymove/identity-service/internal/core/domain"
)

const (
	collectionAttachments = "role_attachments"
	collectionProfiles    = "role_profiles"
)

// RoleRepository implements ports.RoleRepository using MongoDB. Attachments
// and profiles live in separate collections; profiles use a single
// collection with one variant sub-document per role kind.
type RoleRepository struct {
	attachments *mongo.Collection
	profiles    *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		attachments: db.Collection(collectionAttachments),
		profiles:    db.Collection(collectionProfiles),
	}
}

type mongoAttachment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AccountID     string             `bson:"account_id"`
	Role          string             `bson:"role"`
	Active        bool               `bson:"active"`
	AssignedBy    string             `bson:"assigned_by"`
	AssignedAt    time.Time          `bson:"assigned_at"`
	DeactivatedAt *time.Time         `bson:"deactivated_at,omitempty"`
}

func (m mongoAttachment) toDomain() *domain.RoleAttachment {
	return &domain.RoleAttachment{
		ID:            m.ID.Hex(),
		AccountID:     m.AccountID,
		Role:          domain.Role(m.Role),
		Active:        m.Active,
		AssignedBy:    m.AssignedBy,
		AssignedAt:    m.AssignedAt,
		DeactivatedAt: m.DeactivatedAt,
	}
}

type mongoProfile struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AccountID string             `bson:"account_id"`
	Role      string             `bson:"role"`
	Customer  *mongoCustomer     `bson:"customer,omitempty"`
	Driver    *mongoDriver       `bson:"driver,omitempty"`
	Editor    *mongoEditor       `bson:"editor,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type mongoCustomer struct {
	Preferences  map[string]string `bson:"preferences,omitempty"`
	LoyaltyScore int               `bson:"loyalty_score"`
	Tier         string            `bson:"tier"`
}

type mongoDriver struct {
	LicenseNumber string    `bson:"license_number"`
	LicenseExpiry time.Time `bson:"license_expiry"`
	Languages     []string  `bson:"languages"`
	Approved      bool      `bson:"approved"`
}

type mongoEditor struct {
	Permissions []string `bson:"permissions"`
	Approved    bool     `bson:"approved"`
}

func (r *RoleRepository) FindActiveAttachment(ctx context.Context, accountID string, role domain.Role) (*domain.RoleAttachment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoAttachment
	filter := bson.M{"account_id": accountID, "role": string(role), "active": true}
	if err := r.attachments.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("find attachment: %w", err)
	}
	return m.toDomain(), nil
}

func (r *RoleRepository) ListAttachments(ctx context.Context, accountID string) ([]*domain.RoleAttachment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.attachments.Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.RoleAttachment
	for cur.Next(ctx) {
		var m mongoAttachment
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode attachment: %w", err)
		}
		out = append(out, m.toDomain())
	}
	return out, cur.Err()
}

func (r *RoleRepository) CreateAttachment(ctx context.Context, att *domain.RoleAttachment) (*domain.RoleAttachment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAttachment{
		AccountID:  att.AccountID,
		Role:       string(att.Role),
		Active:     att.Active,
		AssignedBy: att.AssignedBy,
		AssignedAt: att.AssignedAt,
	}
	res, err := r.attachments.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateRole
		}
		return nil, fmt.Errorf("insert attachment: %w", err)
	}

	created := *att
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *RoleRepository) DeactivateAttachment(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAttachmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.attachments.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"active": false, "deactivated_at": now},
	})
	if err != nil {
		return fmt.Errorf("deactivate attachment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAttachmentNotFound
	}
	return nil
}

func (r *RoleRepository) DeleteAttachment(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAttachmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.attachments.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

func (r *RoleRepository) findProfile(ctx context.Context, accountID string, role domain.Role) (*mongoProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoProfile
	filter := bson.M{"account_id": accountID, "role": string(role)}
	if err := r.profiles.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &m, nil
}

func (r *RoleRepository) FindCustomerProfile(ctx context.Context, accountID string) (*domain.CustomerProfile, error) {
	m, err := r.findProfile(ctx, accountID, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if m.Customer == nil {
		return nil, domain.ErrProfileNotFound
	}
	return &domain.CustomerProfile{
		AccountID:    m.AccountID,
		Preferences:  m.Customer.Preferences,
		LoyaltyScore: m.Customer.LoyaltyScore,
		Tier:         domain.MembershipTier(m.Customer.Tier),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

func (r *RoleRepository) FindDriverProfile(ctx context.Context, accountID string) (*domain.DriverProfile, error) {
	m, err := r.findProfile(ctx, accountID, domain.RoleDriver)
	if err != nil {
		return nil, err
	}
	if m.Driver == nil {
		return nil, domain.ErrProfileNotFound
	}
	return &domain.DriverProfile{
		AccountID:     m.AccountID,
		LicenseNumber: m.Driver.LicenseNumber,
		LicenseExpiry: m.Driver.LicenseExpiry,
		Languages:     m.Driver.Languages,
		Approved:      m.Driver.Approved,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

func (r *RoleRepository) FindEditorProfile(ctx context.Context, accountID string) (*domain.EditorProfile, error) {
	m, err := r.findProfile(ctx, accountID, domain.RoleEditor)
	if err != nil {
		return nil, err
	}
	if m.Editor == nil {
		return nil, domain.ErrProfileNotFound
	}
	return &domain.EditorProfile{
		AccountID:   m.AccountID,
		Permissions: m.Editor.Permissions,
		Approved:    m.Editor.Approved,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func (r *RoleRepository) FindProfiles(ctx context.Context, accountID string) (*domain.RoleProfiles, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.profiles.Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	defer cur.Close(ctx)

	out := &domain.RoleProfiles{}
	for cur.Next(ctx) {
		var m mongoProfile
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		switch {
		case m.Customer != nil:
			out.Customer = &domain.CustomerProfile{
				AccountID:    m.AccountID,
				Preferences:  m.Customer.Preferences,
				LoyaltyScore: m.Customer.LoyaltyScore,
				Tier:         domain.MembershipTier(m.Customer.Tier),
				CreatedAt:    m.CreatedAt,
				UpdatedAt:    m.UpdatedAt,
			}
		case m.Driver != nil:
			out.Driver = &domain.DriverProfile{
				AccountID:     m.AccountID,
				LicenseNumber: m.Driver.LicenseNumber,
				LicenseExpiry: m.Driver.LicenseExpiry,
				Languages:     m.Driver.Languages,
				Approved:      m.Driver.Approved,
				CreatedAt:     m.CreatedAt,
				UpdatedAt:     m.UpdatedAt,
			}
		case m.Editor != nil:
			out.Editor = &domain.EditorProfile{
				AccountID:   m.AccountID,
				Permissions: m.Editor.Permissions,
				Approved:    m.Editor.Approved,
				CreatedAt:   m.CreatedAt,
				UpdatedAt:   m.UpdatedAt,
			}
		}
	}
	return out, cur.Err()
}

func (r *RoleRepository) CreateCustomerProfile(ctx context.Context, p *domain.CustomerProfile) error {
	return r.insertProfile(ctx, mongoProfile{
		AccountID: p.AccountID,
		Role:      string(domain.RoleCustomer),
		Customer: &mongoCustomer{
			Preferences:  p.Preferences,
			LoyaltyScore: p.LoyaltyScore,
			Tier:         string(p.Tier),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}

func (r *RoleRepository) CreateDriverProfile(ctx context.Context, p *domain.DriverProfile) error {
	return r.insertProfile(ctx, mongoProfile{
		AccountID: p.AccountID,
		Role:      string(domain.RoleDriver),
		Driver: &mongoDriver{
			LicenseNumber: p.LicenseNumber,
			LicenseExpiry: p.LicenseExpiry,
			Languages:     p.Languages,
			Approved:      p.Approved,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}

func (r *RoleRepository) CreateEditorProfile(ctx context.Context, p *domain.EditorProfile) error {
	return r.insertProfile(ctx, mongoProfile{
		AccountID: p.AccountID,
		Role:      string(domain.RoleEditor),
		Editor: &mongoEditor{
			Permissions: p.Permissions,
			Approved:    p.Approved,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}

func (r *RoleRepository) insertProfile(ctx context.Context, doc mongoProfile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.profiles.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// UpdateDriverProfile updates license data and languages. The filter
// deliberately leaves the approval flag out of the update document.
func (r *RoleRepository) UpdateDriverProfile(ctx context.Context, p *domain.DriverProfile) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"account_id": p.AccountID, "role": string(domain.RoleDriver)}
	update := bson.M{"$set": bson.M{
		"driver.license_number": p.LicenseNumber,
		"driver.license_expiry": p.LicenseExpiry,
		"driver.languages":      p.Languages,
		"updated_at":            time.Now().UTC(),
	}}
	res, err := r.profiles.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update driver profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// EnsureIndexes creates the attachment and profile indexes. The partial
// unique index allows many inactive attachments per (account, role) while
// admitting at most one active one.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.attachments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "role", Value: 1}}},
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "role", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
	})
	if err != nil {
		return err
	}

	_, err = r.profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "role", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
