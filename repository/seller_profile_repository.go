package repository

import (
	"context"
	"time"

	"github.com/yashrajoria/shoptube-backend/models"
)

// SellerProfileRepository defines data-access operations for seller profiles.
type SellerProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.SellerProfile, error)
	FindByUserIDs(ctx context.Context, userIDs []string) (map[string]models.SellerProfile, error)
	Create(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error)
	Update(ctx context.Context, id, businessName, description string) (*models.SellerProfile, error)
	Approve(ctx context.Context, id string) (*models.SellerProfile, error)
	ListPending(ctx context.Context, limit int) ([]models.SellerProfile, error)
	ApprovedSellerIDs(ctx context.Context) ([]string, error)
}

type profileRow struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	BusinessName string              `json:"business_name"`
	Description  *string             `json:"description"`
	IsApproved   bool                `json:"is_approved"`
	CreatedAt    time.Time           `json:"created_at"`
	User         *models.UserSummary `json:"user"`
}

func (r profileRow) toModel() *models.SellerProfile {
	p := &models.SellerProfile{
		ID:           r.ID,
		UserID:       r.UserID,
		BusinessName: r.BusinessName,
		IsApproved:   r.IsApproved,
		CreatedAt:    r.CreatedAt,
		User:         r.User,
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	return p
}

const profileFields = `id user_id business_name description is_approved created_at`

// HasuraSellerProfileRepository implements SellerProfileRepository over GraphQL.
type HasuraSellerProfileRepository struct {
	gql GraphQLClient
}

// NewHasuraSellerProfileRepository creates a new HasuraSellerProfileRepository.
func NewHasuraSellerProfileRepository(gql GraphQLClient) SellerProfileRepository {
	return &HasuraSellerProfileRepository{gql: gql}
}

func (r *HasuraSellerProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.SellerProfile, error) {
	if !validID(userID) {
		return nil, ErrNotFound
	}
	var out struct {
		Profiles []profileRow `json:"seller_profiles"`
	}
	q := `query GetSellerProfile($userId: uuid!) {
  seller_profiles(where: {user_id: {_eq: $userId}}, limit: 1) { ` + profileFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"userId": userID}, &out); err != nil {
		return nil, err
	}
	if len(out.Profiles) == 0 {
		return nil, ErrNotFound
	}
	return out.Profiles[0].toModel(), nil
}

// FindByUserIDs returns profiles keyed by user id, each carrying its user.
func (r *HasuraSellerProfileRepository) FindByUserIDs(ctx context.Context, userIDs []string) (map[string]models.SellerProfile, error) {
	userIDs = validIDs(userIDs)
	result := make(map[string]models.SellerProfile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var out struct {
		Profiles []profileRow `json:"seller_profiles"`
	}
	q := `query GetSellerProfiles($ids: [uuid!]!) {
  seller_profiles(where: {user_id: {_in: $ids}}) { ` + profileFields + ` user { id name email } }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"ids": userIDs}, &out); err != nil {
		return nil, err
	}
	for _, p := range out.Profiles {
		result[p.UserID] = *p.toModel()
	}
	return result, nil
}

func (r *HasuraSellerProfileRepository) Create(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error) {
	var out struct {
		Profile profileRow `json:"insert_seller_profiles_one"`
	}
	q := `mutation CreateSellerProfile($userId: uuid!, $businessName: String!, $description: String) {
  insert_seller_profiles_one(object: {user_id: $userId, business_name: $businessName, description: $description, is_approved: false}) { ` + profileFields + ` }
}`
	vars := map[string]interface{}{
		"userId":       profile.UserID,
		"businessName": profile.BusinessName,
		"description":  profile.Description,
	}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, mapConstraint(err)
	}
	return out.Profile.toModel(), nil
}

func (r *HasuraSellerProfileRepository) Update(ctx context.Context, id, businessName, description string) (*models.SellerProfile, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out struct {
		Profile *profileRow `json:"update_seller_profiles_by_pk"`
	}
	q := `mutation UpdateSellerProfile($id: uuid!, $businessName: String!, $description: String) {
  update_seller_profiles_by_pk(pk_columns: {id: $id}, _set: {business_name: $businessName, description: $description}) { ` + profileFields + ` }
}`
	vars := map[string]interface{}{"id": id, "businessName": businessName, "description": description}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, err
	}
	if out.Profile == nil {
		return nil, ErrNotFound
	}
	return out.Profile.toModel(), nil
}

func (r *HasuraSellerProfileRepository) Approve(ctx context.Context, id string) (*models.SellerProfile, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out struct {
		Profile *profileRow `json:"update_seller_profiles_by_pk"`
	}
	q := `mutation ApproveSeller($id: uuid!) {
  update_seller_profiles_by_pk(pk_columns: {id: $id}, _set: {is_approved: true}) { ` + profileFields + ` user { id name email } }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.Profile == nil {
		return nil, ErrNotFound
	}
	return out.Profile.toModel(), nil
}

func (r *HasuraSellerProfileRepository) ListPending(ctx context.Context, limit int) ([]models.SellerProfile, error) {
	var out struct {
		Profiles []profileRow `json:"seller_profiles"`
	}
	q := `query GetPendingSellers($limit: Int) {
  seller_profiles(where: {is_approved: {_eq: false}}, order_by: {created_at: desc}, limit: $limit) { ` + profileFields + ` user { id name email } }
}`
	vars := map[string]interface{}{"limit": nil}
	if limit > 0 {
		vars["limit"] = limit
	}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, err
	}
	profiles := make([]models.SellerProfile, 0, len(out.Profiles))
	for _, p := range out.Profiles {
		profiles = append(profiles, *p.toModel())
	}
	return profiles, nil
}

func (r *HasuraSellerProfileRepository) ApprovedSellerIDs(ctx context.Context) ([]string, error) {
	var out struct {
		Profiles []struct {
			UserID string `json:"user_id"`
		} `json:"seller_profiles"`
	}
	q := `query GetApprovedSellers {
  seller_profiles(where: {is_approved: {_eq: true}}) { user_id }
}`
	if err := r.gql.Do(ctx, q, nil, &out); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.Profiles))
	for _, p := range out.Profiles {
		ids = append(ids, p.UserID)
	}
	return ids, nil
}
