package repository

import (
	"context"
	"time"

	"github.com/yashrajoria/shoptube-backend/models"
)

// UserRepository defines data-access operations for users.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	FindSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error)
	ListRecent(ctx context.Context, limit int) ([]models.User, error)
	ListCustomers(ctx context.Context) ([]models.CustomerSummary, error)
}

type userRow struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         r.Role,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// HasuraUserRepository implements UserRepository over GraphQL.
type HasuraUserRepository struct {
	gql GraphQLClient
}

// NewHasuraUserRepository creates a new HasuraUserRepository.
func NewHasuraUserRepository(gql GraphQLClient) UserRepository {
	return &HasuraUserRepository{gql: gql}
}

const userFields = `id name email role password_hash created_at`

func (r *HasuraUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var out struct {
		Users []userRow `json:"users"`
	}
	q := `query GetUserByEmail($email: String!) {
  users(where: {email: {_eq: $email}}, limit: 1) { ` + userFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"email": email}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, ErrNotFound
	}
	return out.Users[0].toModel(), nil
}

func (r *HasuraUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out struct {
		User *userRow `json:"users_by_pk"`
	}
	q := `query GetUserById($id: uuid!) {
  users_by_pk(id: $id) { ` + userFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, ErrNotFound
	}
	return out.User.toModel(), nil
}

func (r *HasuraUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var out struct {
		User userRow `json:"insert_users_one"`
	}
	q := `mutation CreateUser($name: String!, $email: String!, $password_hash: String!, $role: String!) {
  insert_users_one(object: {name: $name, email: $email, password_hash: $password_hash, role: $role}) { ` + userFields + ` }
}`
	vars := map[string]interface{}{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
	}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, mapConstraint(err)
	}
	return out.User.toModel(), nil
}

func (r *HasuraUserRepository) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out struct {
		User *userRow `json:"update_users_by_pk"`
	}
	q := `mutation UpdateUserProfile($id: uuid!, $name: String!, $email: String!) {
  update_users_by_pk(pk_columns: {id: $id}, _set: {name: $name, email: $email}) { ` + userFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": id, "name": name, "email": email}, &out); err != nil {
		return nil, mapConstraint(err)
	}
	if out.User == nil {
		return nil, ErrNotFound
	}
	return out.User.toModel(), nil
}

func (r *HasuraUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if !validID(id) {
		return ErrNotFound
	}
	var out struct {
		User *struct {
			ID string `json:"id"`
		} `json:"update_users_by_pk"`
	}
	q := `mutation UpdatePassword($id: uuid!, $hash: String!) {
  update_users_by_pk(pk_columns: {id: $id}, _set: {password_hash: $hash}) { id }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": id, "hash": passwordHash}, &out); err != nil {
		return err
	}
	if out.User == nil {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. Signup uses it to undo a half-created seller.
func (r *HasuraUserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	var out struct {
		User *struct {
			ID string `json:"id"`
		} `json:"delete_users_by_pk"`
	}
	q := `mutation DeleteUser($id: uuid!) {
  delete_users_by_pk(id: $id) { id }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": id}, &out); err != nil {
		return err
	}
	if out.User == nil {
		return ErrNotFound
	}
	return nil
}

func (r *HasuraUserRepository) FindSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	ids = validIDs(ids)
	result := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var out struct {
		Users []struct {
			ID        string    `json:"id"`
			Name      string    `json:"name"`
			Email     string    `json:"email"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"users"`
	}
	q := `query GetUsersByIds($ids: [uuid!]!) {
  users(where: {id: {_in: $ids}}) { id name email created_at }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"ids": ids}, &out); err != nil {
		return nil, err
	}
	for _, u := range out.Users {
		created := u.CreatedAt
		result[u.ID] = models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: &created}
	}
	return result, nil
}

func (r *HasuraUserRepository) ListRecent(ctx context.Context, limit int) ([]models.User, error) {
	var out struct {
		Users []userRow `json:"users"`
	}
	q := `query GetRecentUsers($limit: Int!) {
  users(order_by: {created_at: desc}, limit: $limit) { id name email role created_at }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"limit": limit}, &out); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(out.Users))
	for _, u := range out.Users {
		users = append(users, *u.toModel())
	}
	return users, nil
}

func (r *HasuraUserRepository) ListCustomers(ctx context.Context) ([]models.CustomerSummary, error) {
	var out struct {
		Users []struct {
			ID            string         `json:"id"`
			Name          string         `json:"name"`
			Email         string         `json:"email"`
			CreatedAt     time.Time      `json:"created_at"`
			Subscriptions aggregateCount `json:"subscriptions_aggregate"`
			Orders        aggregateSum   `json:"orders_aggregate"`
		} `json:"users"`
	}
	q := `query GetCustomers {
  users(where: {role: {_eq: "customer"}}, order_by: {created_at: desc}) {
    id name email created_at
    subscriptions_aggregate { aggregate { count } }
    orders_aggregate(where: {status: {_neq: "failed"}}) { aggregate { count sum { total_amount } } }
  }
}`
	if err := r.gql.Do(ctx, q, nil, &out); err != nil {
		return nil, err
	}
	customers := make([]models.CustomerSummary, 0, len(out.Users))
	for _, u := range out.Users {
		customers = append(customers, models.CustomerSummary{
			ID:                u.ID,
			Name:              u.Name,
			Email:             u.Email,
			CreatedAt:         u.CreatedAt,
			SubscriptionCount: u.Subscriptions.Aggregate.Count,
			OrderCount:        u.Orders.Aggregate.Count,
			TotalSpent:        u.Orders.total(),
		})
	}
	return customers, nil
}
