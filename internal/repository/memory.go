package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rosellea-backend/internal/domain"
)

// MemoryStore is a process-local store backing every repository. It serves the
// "memory" store driver and the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]domain.Product
	carts    map[primitive.ObjectID]domain.Cart // keyed by user
	orders   map[primitive.ObjectID]domain.Order
	users    map[primitive.ObjectID]domain.User
	contacts map[primitive.ObjectID]domain.Contact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[primitive.ObjectID]domain.Product),
		carts:    make(map[primitive.ObjectID]domain.Cart),
		orders:   make(map[primitive.ObjectID]domain.Order),
		users:    make(map[primitive.ObjectID]domain.User),
		contacts: make(map[primitive.ObjectID]domain.Contact),
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	b, ok := ctx.Value(txKey{}).(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

func now() time.Time { return time.Now().UTC() }

// ---- products ----

type MemoryProducts struct{ store *MemoryStore }

func NewMemoryProducts(store *MemoryStore) *MemoryProducts { return &MemoryProducts{store: store} }

var _ ProductRepository = (*MemoryProducts)(nil)

func (mp *MemoryProducts) Create(ctx context.Context, p *domain.Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	p.UpdatedAt = p.CreatedAt
	mp.store.products[p.ID] = *p
	return nil
}

func (mp *MemoryProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	p, ok := mp.store.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (mp *MemoryProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)

	type scored struct {
		p     domain.Product
		score int
	}
	matched := make([]scored, 0)
	for _, p := range mp.store.products {
		score, ok := matchProduct(&p, f)
		if ok {
			matched = append(matched, scored{p: p, score: score})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := &matched[i], &matched[j]
		if len(f.Sort) == 0 && f.Search != "" && a.score != b.score {
			return a.score > b.score
		}
		for _, s := range f.Sort {
			if c := compareProducts(&a.p, &b.p, s.Field); c != 0 {
				return (c < 0) != s.Desc
			}
		}
		return a.p.ID.Hex() < b.p.ID.Hex()
	})

	out := make([]domain.Product, 0, len(matched))
	for i, s := range matched {
		if int64(i) < f.Skip {
			continue
		}
		if f.Limit > 0 && int64(len(out)) >= f.Limit {
			break
		}
		out = append(out, s.p)
	}
	return out, nil
}

func (mp *MemoryProducts) Count(ctx context.Context, f ProductFilter) (int64, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	var n int64
	for _, p := range mp.store.products {
		if _, ok := matchProduct(&p, f); ok {
			n++
		}
	}
	return n, nil
}

func (mp *MemoryProducts) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	p, ok := mp.store.products[id]
	if !ok {
		return ErrNotFound
	}
	if delta < 0 && p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = now()
	mp.store.products[id] = p
	return nil
}

// matchProduct applies the filter; the score mirrors the text index weights
// (title 10, tags 5, description 1).
func matchProduct(p *domain.Product, f ProductFilter) (int, bool) {
	if f.ActiveOnly && !p.IsActive {
		return 0, false
	}
	if f.Category != "" && !strings.EqualFold(string(p.Category), string(f.Category)) {
		return 0, false
	}
	if f.NewArrivals && !p.IsNewArrival {
		return 0, false
	}
	if f.Featured && !p.IsFeatured {
		return 0, false
	}
	if f.Search == "" {
		return 0, true
	}
	title := wordSet(p.Title)
	desc := wordSet(p.Description)
	tags := wordSet(strings.Join(p.Tags, " "))
	score := 0
	for _, term := range strings.Fields(strings.ToLower(f.Search)) {
		if title[term] {
			score += 10
		}
		if tags[term] {
			score += 5
		}
		if desc[term] {
			score++
		}
	}
	return score, score > 0
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		out[w] = true
	}
	return out
}

func compareProducts(a, b *domain.Product, field string) int {
	switch field {
	case "price":
		return compareFloat(a.Price, b.Price)
	case "rating":
		return compareFloat(a.Rating, b.Rating)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ---- carts ----

type MemoryCarts struct{ store *MemoryStore }

func NewMemoryCarts(store *MemoryStore) *MemoryCarts { return &MemoryCarts{store: store} }

var _ CartRepository = (*MemoryCarts)(nil)

func copyCart(c domain.Cart) *domain.Cart {
	c.Items = append([]domain.CartItem(nil), c.Items...)
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &c
}

func (mc *MemoryCarts) FindByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCart(c), nil
}

func (mc *MemoryCarts) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c, ok := mc.store.carts[userID]
	if !ok {
		t := now()
		c = domain.Cart{ID: primitive.NewObjectID(), User: userID, Items: []domain.CartItem{}, CreatedAt: t, UpdatedAt: t}
		mc.store.carts[userID] = c
	}
	return copyCart(c), nil
}

func (mc *MemoryCarts) SaveItems(ctx context.Context, c *domain.Cart) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	stored, ok := mc.store.carts[c.User]
	if !ok {
		return ErrNotFound
	}
	stored.Items = append([]domain.CartItem(nil), c.Items...)
	stored.UpdatedAt = now()
	mc.store.carts[c.User] = stored
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (mc *MemoryCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	stored, ok := mc.store.carts[userID]
	if !ok {
		return ErrNotFound
	}
	stored.Items = []domain.CartItem{}
	stored.UpdatedAt = now()
	mc.store.carts[userID] = stored
	return nil
}

// ---- orders ----

type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func copyOrder(o domain.Order) *domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o
}

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	for _, existing := range mo.store.orders {
		if existing.OrderNumber == o.OrderNumber {
			return ErrDuplicate
		}
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt
	mo.store.orders[o.ID] = *copyOrder(*o)
	return nil
}

func (mo *MemoryOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyOrder(o), nil
}

func (mo *MemoryOrders) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Order, error) {
	o, err := mo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.User != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (mo *MemoryOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.orders {
		if o.User == userID {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (mo *MemoryOrders) SetStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus) (*domain.Order, error) {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o, ok := mo.store.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status != from {
		return nil, ErrConflict
	}
	o.Status = to
	o.UpdatedAt = now()
	mo.store.orders[id] = o
	return copyOrder(o), nil
}

func (mo *MemoryOrders) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus) (*domain.Order, error) {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o, ok := mo.store.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.PaymentStatus = status
	o.UpdatedAt = now()
	mo.store.orders[id] = o
	return copyOrder(o), nil
}

func (mo *MemoryOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.orders[id]; !ok {
		return ErrNotFound
	}
	delete(mo.store.orders, id)
	return nil
}

// ---- users ----

type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (us *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	us.store.wlock(ctx)
	defer us.store.wunlock(ctx)
	for _, existing := range us.store.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	us.store.users[u.ID] = *u
	return nil
}

func (us *MemoryUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	u, ok := us.store.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (us *MemoryUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	for _, u := range us.store.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (us *MemoryUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd domain.ProfileUpdate) (*domain.User, error) {
	us.store.wlock(ctx)
	defer us.store.wunlock(ctx)
	u, ok := us.store.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	upd.Apply(&u)
	u.UpdatedAt = now()
	us.store.users[id] = u
	return &u, nil
}

// Remove deletes a user outright. Only tests and tooling need it.
func (us *MemoryUsers) Remove(id primitive.ObjectID) {
	us.store.mu.Lock()
	defer us.store.mu.Unlock()
	delete(us.store.users, id)
}

// ---- contacts ----

type MemoryContacts struct{ store *MemoryStore }

func NewMemoryContacts(store *MemoryStore) *MemoryContacts { return &MemoryContacts{store: store} }

var _ ContactRepository = (*MemoryContacts)(nil)

func (mc *MemoryContacts) Create(ctx context.Context, c *domain.Contact) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now()
	mc.store.contacts[c.ID] = *c
	return nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	// repositories skip their own locks while the context carries txKey
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}
