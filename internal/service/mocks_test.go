package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/events"
	"github.com/fjod/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockUserRepository struct {
	m     sync.Mutex
	users map[primitive.ObjectID]*domain.User
	err   error
	// conflicts makes the next n SaveCart calls fail with ErrVersionConflict.
	conflicts int
	saves     int
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	r := &mockUserRepository{users: map[primitive.ObjectID]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Cart = append([]domain.CartLineItem(nil), u.Cart...)
	c.Orders = append([]primitive.ObjectID(nil), u.Orders...)
	return &c
}

func (m *mockUserRepository) cart(id primitive.ObjectID) []domain.CartLineItem {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]domain.CartLineItem(nil), m.users[id].Cart...)
}

func (m *mockUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok || u.Deleted {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email && !u.Deleted {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *mockUserRepository) UpdateProfile(_ context.Context, user *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[user.ID]
	if !ok || u.Deleted {
		return repository.ErrUserNotFound
	}
	u.Email, u.Name, u.Role, u.Sex, u.PhoneNumber = user.Email, user.Name, user.Role, user.Sex, user.PhoneNumber
	if len(user.ProfileImage) > 0 {
		u.ProfileImage = user.ProfileImage
	}
	return nil
}

func (m *mockUserRepository) List(context.Context) ([]domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	users := []domain.User{}
	for _, u := range m.users {
		if !u.Deleted {
			users = append(users, *cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID.Hex() < users[j].ID.Hex() })
	return users, nil
}

func (m *mockUserRepository) ListPage(ctx context.Context, skip, limit int64) ([]domain.User, int64, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(all))
	if skip >= total {
		return []domain.User{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (m *mockUserRepository) SoftDelete(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	u, ok := m.users[id]
	if !ok || u.Deleted {
		return nil, repository.ErrUserNotFound
	}
	u.Deleted = true
	return cloneUser(u), nil
}

func (m *mockUserRepository) UpsertSocial(_ context.Context, accountType, email, name string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, u := range m.users {
		if u.Email == email && !u.Deleted {
			return cloneUser(u), nil
		}
	}
	u := &domain.User{
		ID:          primitive.NewObjectID(),
		Email:       email,
		Name:        name,
		Role:        domain.RoleUser,
		Type:        accountType,
		SocialLogin: true,
	}
	m.users[u.ID] = u
	return cloneUser(u), nil
}

func (m *mockUserRepository) AppendOrder(_ context.Context, id, orderID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Orders = append(u.Orders, orderID)
	return nil
}

func (m *mockUserRepository) SaveCart(_ context.Context, id primitive.ObjectID, expectedVersion int64, cart []domain.CartLineItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrVersionConflict
	}
	u, ok := m.users[id]
	if !ok || u.Deleted || u.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	u.Cart = append([]domain.CartLineItem(nil), cart...)
	u.Version++
	return nil
}

func (m *mockUserRepository) FindIDsByCartProduct(_ context.Context, productID primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var ids []primitive.ObjectID
	for _, u := range m.users {
		for _, item := range u.Cart {
			if item.ProductID == productID {
				ids = append(ids, u.ID)
				break
			}
		}
	}
	return ids, nil
}

type mockProductRepository struct {
	m        sync.Mutex
	products map[primitive.ObjectID]*domain.Product
	err      error
	// onUpdate runs at the start of Update, outside the lock.
	onUpdate func()
	changes  []repository.ProductChanges
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	r := &mockProductRepository{products: map[primitive.ObjectID]*domain.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func cloneProduct(p *domain.Product) domain.Product {
	c := *p
	c.Sizes = append([]domain.SizeVariant(nil), p.Sizes...)
	return c
}

func (m *mockProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	c := cloneProduct(p)
	return &c, nil
}

func (m *mockProductRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	products := []domain.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			products = append(products, cloneProduct(p))
		}
	}
	return products, nil
}

func (m *mockProductRepository) List(context.Context) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	products := []domain.Product{}
	for _, p := range m.products {
		products = append(products, cloneProduct(p))
	}
	return products, nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	products := []domain.Product{}
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Category), strings.ToLower(category)) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *mockProductRepository) Categories(ctx context.Context) ([]string, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	categories := []string{}
	for _, p := range all {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (m *mockProductRepository) Create(_ context.Context, product *domain.Product) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	c := cloneProduct(product)
	m.products[product.ID] = &c
	return nil
}

func (m *mockProductRepository) Update(_ context.Context, id primitive.ObjectID, changes repository.ProductChanges) (*domain.Product, error) {
	if m.onUpdate != nil {
		m.onUpdate()
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	m.changes = append(m.changes, changes)
	if changes.Name != nil {
		p.Name = *changes.Name
	}
	if changes.Description != nil {
		p.Description = *changes.Description
	}
	if changes.Category != nil {
		p.Category = *changes.Category
	}
	if changes.Price != nil {
		p.Price = *changes.Price
	}
	if changes.Colors != nil {
		p.Colors = changes.Colors
	}
	if changes.SalesPercent != nil {
		p.SalesPercent = *changes.SalesPercent
	}
	if changes.Sizes != nil {
		p.Sizes = append([]domain.SizeVariant(nil), changes.Sizes...)
	}
	c := cloneProduct(p)
	return &c, nil
}

func (m *mockProductRepository) SetSizeQuantity(_ context.Context, id primitive.ObjectID, size string, quantity int) (*domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			p.Sizes[i].Quantity = quantity
			c := cloneProduct(p)
			return &c, nil
		}
	}
	return nil, repository.ErrSizeNotFound
}

func (m *mockProductRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) ConsumeStock(_ context.Context, id primitive.ObjectID, size string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if p, ok := m.products[id]; ok {
		for i := range p.Sizes {
			if p.Sizes[i].Size == size && p.Sizes[i].Quantity >= quantity {
				p.Sizes[i].Quantity -= quantity
				return nil
			}
		}
	}
	return repository.ErrInsufficientStock
}

func (m *mockProductRepository) RestoreStock(_ context.Context, id primitive.ObjectID, size string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if p, ok := m.products[id]; ok {
		for i := range p.Sizes {
			if p.Sizes[i].Size == size {
				p.Sizes[i].Quantity += quantity
				return nil
			}
		}
	}
	return repository.ErrSizeNotFound
}

func (m *mockProductRepository) stock(id primitive.ObjectID, size string) int {
	m.m.Lock()
	defer m.m.Unlock()
	for _, s := range m.products[id].Sizes {
		if s.Size == size {
			return s.Quantity
		}
	}
	return -1
}

type mockCache struct {
	m       sync.Mutex
	entries map[string][]domain.CartEntry
	gens    map[string]int64
	deletes int
	settled int
	err     error
	// setGate, when set, holds every Set until it is closed.
	setGate chan struct{}
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]domain.CartEntry{}, gens: map[string]int64{}}
}

func (m *mockCache) Get(_ context.Context, userID string) ([]domain.CartEntry, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	entries, ok := m.entries[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return entries, nil
}

func (m *mockCache) Generation(_ context.Context, userID string) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.gens[userID], m.err
}

func (m *mockCache) Set(_ context.Context, userID string, generation int64, entries []domain.CartEntry) error {
	m.m.Lock()
	gate := m.setGate
	m.m.Unlock()
	if gate != nil {
		<-gate
	}

	m.m.Lock()
	defer m.m.Unlock()
	defer func() { m.settled++ }()
	if m.gens[userID] != generation {
		return cache.ErrStaleGeneration
	}
	m.entries[userID] = entries
	return m.err
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	m.gens[userID]++
	delete(m.entries, userID)
	return m.err
}

func (m *mockCache) has(userID string) bool {
	m.m.Lock()
	defer m.m.Unlock()
	_, ok := m.entries[userID]
	return ok
}

func (m *mockCache) settledSets() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.settled
}

type mockPublisher struct {
	m      sync.Mutex
	events []events.OrderCreated
	err    error
}

func (m *mockPublisher) PublishOrderCreated(_ context.Context, event events.OrderCreated) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

type mockOrderRepository struct {
	m      sync.Mutex
	orders map[primitive.ObjectID]*domain.Order
	err    error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: map[primitive.ObjectID]*domain.Order{}}
}

func (m *mockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	order.ID = primitive.NewObjectID()
	c := *order
	m.orders[order.ID] = &c
	return nil
}

func (m *mockOrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	c := *o
	return &c, nil
}

func (m *mockOrderRepository) List(context.Context) ([]domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	orders := []domain.Order{}
	for _, o := range m.orders {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (m *mockOrderRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status domain.OrderStatus) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	o.Status = status
	c := *o
	return &c, nil
}
