package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/providers"
	"github.com/yashrajoria/shoptube-backend/repository"
)

// ---- users ----

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicate
		}
	}
	cp := *user
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	f.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id, name, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Name, u.Email = name, email
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) FindSummaries(_ context.Context, ids []string) (map[string]models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]models.UserSummary{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			created := u.CreatedAt
			out[id] = models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: &created}
		}
	}
	return out, nil
}

func (f *fakeUsers) ListRecent(_ context.Context, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) ListCustomers(context.Context) ([]models.CustomerSummary, error) {
	return []models.CustomerSummary{}, nil
}

// ---- seller profiles ----

type fakeProfiles struct {
	mu        sync.Mutex
	profiles  map[string]*models.SellerProfile // by profile id
	createErr error
}

func newFakeProfiles(profiles ...models.SellerProfile) *fakeProfiles {
	f := &fakeProfiles{profiles: map[string]*models.SellerProfile{}}
	for i := range profiles {
		p := profiles[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		f.profiles[p.ID] = &p
	}
	return f
}

func (f *fakeProfiles) FindByUserID(_ context.Context, userID string) (*models.SellerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfiles) FindByUserIDs(_ context.Context, userIDs []string) (map[string]models.SellerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	out := map[string]models.SellerProfile{}
	for _, p := range f.profiles {
		if want[p.UserID] {
			out[p.UserID] = *p
		}
	}
	return out, nil
}

func (f *fakeProfiles) Create(_ context.Context, profile *models.SellerProfile) (*models.SellerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *profile
	cp.ID = uuid.NewString()
	f.profiles[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeProfiles) Update(_ context.Context, id, businessName, description string) (*models.SellerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.BusinessName, p.Description = businessName, description
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Approve(_ context.Context, id string) (*models.SellerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.IsApproved = true
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) ListPending(context.Context, int) ([]models.SellerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SellerProfile
	for _, p := range f.profiles {
		if !p.IsApproved {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) ApprovedSellerIDs(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.profiles {
		if p.IsApproved {
			out = append(out, p.UserID)
		}
	}
	return out, nil
}

// ---- products ----

type fakeProducts struct {
	mu       sync.Mutex
	products map[string]models.Product
	created  []models.Product
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	f := &fakeProducts{products: map[string]models.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) sorted() []models.Product {
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeProducts) List(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(), nil
}

func (f *fakeProducts) Search(_ context.Context, sellerIDs []string, q models.ProductQuery) ([]models.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := map[string]bool{}
	for _, id := range sellerIDs {
		allowed[id] = true
	}
	term := strings.ToLower(q.Search)
	var matched []models.Product
	for _, p := range f.sorted() {
		if !allowed[p.SellerID] {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		matched = append(matched, p)
	}
	total := len(matched)
	if q.Offset >= len(matched) {
		return []models.Product{}, total, nil
	}
	matched = matched[q.Offset:]
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, total, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) ListBySeller(_ context.Context, sellerID string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for _, p := range f.sorted() {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) ListRecent(_ context.Context, limit int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProducts) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *product
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	f.products[cp.ID] = cp
	f.created = append(f.created, cp)
	return &cp, nil
}

// ---- cart ----

type fakeCart struct {
	mu      sync.Mutex
	items   map[string]*models.CartItem
	cleared map[string]int
}

func newFakeCart() *fakeCart {
	return &fakeCart{items: map[string]*models.CartItem{}, cleared: map[string]int{}}
}

func (f *fakeCart) ListByCustomer(_ context.Context, customerID string) ([]models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CartItem{}
	for _, it := range f.items {
		if it.CustomerID == customerID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeCart) FindByProduct(_ context.Context, customerID, productID string) (*models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.CustomerID == customerID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCart) Add(_ context.Context, customerID, productID string, quantity int) (*models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := &models.CartItem{ID: uuid.NewString(), CustomerID: customerID, ProductID: productID, Quantity: quantity}
	f.items[it.ID] = it
	cp := *it
	return &cp, nil
}

func (f *fakeCart) UpdateQuantity(_ context.Context, customerID, itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.CustomerID != customerID {
		return repository.ErrNotFound
	}
	it.Quantity = quantity
	return nil
}

func (f *fakeCart) Remove(_ context.Context, customerID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.CustomerID != customerID {
		return repository.ErrNotFound
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeCart) Clear(_ context.Context, customerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, it := range f.items {
		if it.CustomerID == customerID {
			delete(f.items, id)
			n++
		}
	}
	f.cleared[customerID]++
	return n, nil
}

// ---- wishlist ----

type fakeWishlist struct {
	mu    sync.Mutex
	items map[string]*models.WishlistItem
}

func newFakeWishlist() *fakeWishlist {
	return &fakeWishlist{items: map[string]*models.WishlistItem{}}
}

func (f *fakeWishlist) ListByCustomer(_ context.Context, customerID string) ([]models.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.WishlistItem{}
	for _, it := range f.items {
		if it.CustomerID == customerID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeWishlist) Exists(_ context.Context, customerID, productID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.CustomerID == customerID && it.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWishlist) Add(_ context.Context, customerID, productID string) (*models.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := &models.WishlistItem{ID: uuid.NewString(), CustomerID: customerID, ProductID: productID, CreatedAt: time.Now()}
	f.items[it.ID] = it
	cp := *it
	return &cp, nil
}

func (f *fakeWishlist) Remove(_ context.Context, customerID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[itemID]
	if !ok || it.CustomerID != customerID {
		return repository.ErrNotFound
	}
	delete(f.items, itemID)
	return nil
}

// ---- subscriptions ----

type fakeSubscriptions struct {
	mu   sync.Mutex
	subs []models.Subscription
}

func (f *fakeSubscriptions) ListByCustomer(_ context.Context, customerID string) ([]models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Subscription{}
	for _, s := range f.subs {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) ListBySeller(_ context.Context, sellerID string) ([]models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Subscription{}
	for _, s := range f.subs {
		if s.SellerID == sellerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptions) Exists(_ context.Context, customerID, sellerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.CustomerID == customerID && s.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubscriptions) Create(_ context.Context, customerID, sellerID string) (*models.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.Subscription{ID: uuid.NewString(), CustomerID: customerID, SellerID: sellerID, CreatedAt: time.Now()}
	f.subs = append(f.subs, s)
	return &s, nil
}

func (f *fakeSubscriptions) Delete(_ context.Context, customerID, sellerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.subs[:0]
	n := 0
	for _, s := range f.subs {
		if s.CustomerID == customerID && s.SellerID == sellerID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	f.subs = kept
	return n, nil
}

// ---- orders ----

type fakeOrders struct {
	mu        sync.Mutex
	orders    map[string]*models.Order
	updateErr error
	// onUpdate runs before a status update is applied.
	onUpdate func(txRef, status string)
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]*models.Order{}}
}

func (f *fakeOrders) Create(_ context.Context, o models.NewOrder) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.orders {
		if existing.TxRef == o.TxRef {
			return nil, repository.ErrDuplicate
		}
	}
	order := &models.Order{
		ID:              uuid.NewString(),
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
		Status:          models.OrderStatusPaymentPending,
		ShippingAddress: o.ShippingAddress,
		TxRef:           o.TxRef,
		CreatedAt:       time.Now(),
	}
	for _, it := range o.Items {
		it.ID = uuid.NewString()
		it.OrderID = order.ID
		order.Items = append(order.Items, it)
	}
	f.orders[order.ID] = order
	cp := *order
	return &cp, nil
}

func (f *fakeOrders) UpdateStatusByTxRef(_ context.Context, txRef, status string) (int, error) {
	if hook := f.onUpdate; hook != nil {
		hook(txRef, status)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	n := 0
	for _, o := range f.orders {
		if o.TxRef == txRef {
			o.Status = status
			n++
		}
	}
	return n, nil
}

func (f *fakeOrders) FindForCustomer(_ context.Context, orderID, customerID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.CustomerID != customerID {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByCustomer(_ context.Context, customerID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListBySeller(context.Context, string) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (f *fakeOrders) ListRecent(context.Context, int) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (f *fakeOrders) all() []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out
}

// ---- payment ledger ----

type fakePayments struct {
	mu   sync.Mutex
	rows map[string]*models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{rows: map[string]*models.Payment{}}
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.TxRef]; ok {
		return repository.ErrDuplicate
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	f.rows[p.TxRef] = &cp
	return nil
}

func (f *fakePayments) FindByTxRef(_ context.Context, txRef string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[txRef]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) transition(txRef string, apply func(p *models.Payment)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[txRef]
	if !ok || p.IsTerminal() {
		return repository.ErrNotFound
	}
	apply(p)
	return nil
}

func (f *fakePayments) MarkPending(_ context.Context, txRef, checkoutURL, providerRef string) error {
	return f.transition(txRef, func(p *models.Payment) {
		p.Status = models.PaymentStatusPending
		p.CheckoutURL = &checkoutURL
		p.ProviderRef = &providerRef
	})
}

func (f *fakePayments) MarkSucceeded(_ context.Context, txRef, payload string) error {
	return f.transition(txRef, func(p *models.Payment) {
		now := time.Now()
		p.Status = models.PaymentStatusSucceeded
		p.GatewayPayload = &payload
		p.SucceededAt = &now
	})
}

func (f *fakePayments) MarkFailed(_ context.Context, txRef, payload string) error {
	return f.transition(txRef, func(p *models.Payment) {
		now := time.Now()
		p.Status = models.PaymentStatusFailed
		p.GatewayPayload = &payload
		p.FailedAt = &now
	})
}

func (f *fakePayments) ListUnsettled(_ context.Context, olderThan time.Time, limit int) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, p := range f.rows {
		if !p.IsTerminal() && p.CreatedAt.Before(olderThan) {
			out = append(out, *p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePayments) age(txRef string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[txRef].CreatedAt = time.Now().Add(-d)
}

// ---- notifications ----

type fakeNotifications struct {
	mu    sync.Mutex
	items []models.Notification
}

func (f *fakeNotifications) CreateMany(_ context.Context, ns []models.Notification) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range ns {
		n.ID = uuid.NewString()
		f.items = append(f.items, n)
	}
	return len(ns), nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Notification{}
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) UnreadCount(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for i := range f.items {
		if f.items[i].UserID == userID && !f.items[i].IsRead {
			f.items[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// ---- dashboards ----

type fakeDashboards struct {
	windows      []models.WindowStats
	calls        int
	totalSellers int
}

func (f *fakeDashboards) CustomerStats(context.Context, string) (*models.CustomerDashboard, error) {
	return &models.CustomerDashboard{}, nil
}

func (f *fakeDashboards) SellerStats(context.Context, string) (*models.SellerDashboard, error) {
	return &models.SellerDashboard{RecentOrders: []models.Order{}}, nil
}

func (f *fakeDashboards) AdminStats(context.Context) (*models.AdminDashboard, error) {
	return &models.AdminDashboard{}, nil
}

func (f *fakeDashboards) WindowStats(context.Context, time.Time, time.Time) (*models.WindowStats, error) {
	w := f.windows[f.calls]
	f.calls++
	return &w, nil
}

func (f *fakeDashboards) TotalSellers(context.Context) (int, error) {
	return f.totalSellers, nil
}

// ---- cache, lock, revoker, events ----

type fakeCache struct {
	invalidations int
}

func (f *fakeCache) GetList(context.Context, string, interface{}) bool    { return false }
func (f *fakeCache) SetList(context.Context, string, interface{})         {}
func (f *fakeCache) GetProduct(context.Context, string, interface{}) bool { return false }
func (f *fakeCache) SetProduct(context.Context, string, interface{})      {}
func (f *fakeCache) InvalidateLists(context.Context) error {
	f.invalidations++
	return nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (f *fakeLocker) Acquire(_ context.Context, name string) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[name] {
		return nil, repository.ErrLockHeld
	}
	f.held[name] = true
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, name)
	}, nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]bool{}
	}
	f.revoked[jti] = true
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[jti], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

// ---- gateway ----

type fakeGateway struct {
	mu           sync.Mutex
	name         string
	initErr      error
	verification *providers.Verification
	verifyErr    error
	initCalls    int
	verifyCalls  int
	lastInit     providers.InitializeRequest
}

func (g *fakeGateway) Name() string {
	if g.name == "" {
		return models.GatewayChapa
	}
	return g.name
}

func (g *fakeGateway) Initialize(_ context.Context, req providers.InitializeRequest) (*providers.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls++
	g.lastInit = req
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &providers.Checkout{CheckoutURL: "https://checkout.example/pay/" + req.TxRef, ProviderRef: "ref-" + req.TxRef}, nil
}

func (g *fakeGateway) Verify(_ context.Context, _, _ string) (*providers.Verification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verification, nil
}
