package repository

import (
	"context"

	"github.com/yashrajoria/shoptube-backend/models"
)

// NotificationRepository defines data-access operations for in-app
// notifications. Reads and updates are scoped to the recipient.
type NotificationRepository interface {
	CreateMany(ctx context.Context, notifications []models.Notification) (int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

const notificationFields = `id user_id title message type is_read product_id seller_id created_at`

// HasuraNotificationRepository implements NotificationRepository over GraphQL.
type HasuraNotificationRepository struct {
	gql GraphQLClient
}

// NewHasuraNotificationRepository creates a new HasuraNotificationRepository.
func NewHasuraNotificationRepository(gql GraphQLClient) NotificationRepository {
	return &HasuraNotificationRepository{gql: gql}
}

func (r *HasuraNotificationRepository) CreateMany(ctx context.Context, notifications []models.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	objects := make([]map[string]interface{}, 0, len(notifications))
	for _, n := range notifications {
		objects = append(objects, map[string]interface{}{
			"user_id":    n.UserID,
			"title":      n.Title,
			"message":    n.Message,
			"type":       n.Type,
			"is_read":    false,
			"product_id": n.ProductID,
			"seller_id":  n.SellerID,
		})
	}
	var out struct {
		Result affectedRows `json:"insert_notifications"`
	}
	q := `mutation CreateNotifications($objects: [notifications_insert_input!]!) {
  insert_notifications(objects: $objects) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"objects": objects}, &out); err != nil {
		return 0, err
	}
	return out.Result.AffectedRows, nil
}

func (r *HasuraNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if !validID(userID) {
		return []models.Notification{}, nil
	}
	var out struct {
		Notifications []models.Notification `json:"notifications"`
	}
	q := `query GetNotifications($userId: uuid!, $limit: Int!, $offset: Int!) {
  notifications(where: {user_id: {_eq: $userId}}, order_by: {created_at: desc}, limit: $limit, offset: $offset) { ` + notificationFields + ` }
}`
	vars := map[string]interface{}{"userId": userID, "limit": limit, "offset": offset}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

func (r *HasuraNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	if !validID(userID) {
		return 0, nil
	}
	var out struct {
		Aggregate aggregateCount `json:"notifications_aggregate"`
	}
	q := `query GetUnreadCount($userId: uuid!) {
  notifications_aggregate(where: {user_id: {_eq: $userId}, is_read: {_eq: false}}) { aggregate { count } }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"userId": userID}, &out); err != nil {
		return 0, err
	}
	return out.Aggregate.Aggregate.Count, nil
}

func (r *HasuraNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	if !validID(userID) || !validID(id) {
		return ErrNotFound
	}
	var out struct {
		Result affectedRows `json:"update_notifications"`
	}
	q := `mutation MarkNotificationRead($id: uuid!, $userId: uuid!) {
  update_notifications(where: {id: {_eq: $id}, user_id: {_eq: $userId}}, _set: {is_read: true}) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": id, "userId": userID}, &out); err != nil {
		return err
	}
	if out.Result.AffectedRows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *HasuraNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if !validID(userID) {
		return 0, nil
	}
	var out struct {
		Result affectedRows `json:"update_notifications"`
	}
	q := `mutation MarkAllNotificationsRead($userId: uuid!) {
  update_notifications(where: {user_id: {_eq: $userId}, is_read: {_eq: false}}, _set: {is_read: true}) { affected_rows }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"userId": userID}, &out); err != nil {
		return 0, err
	}
	return out.Result.AffectedRows, nil
}
