package http

import (
	"context"
	"mime/multipart"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
)

type mockCartService struct {
	cart    []domain.CartLineItem
	entries []domain.CartEntry
	err     error

	gotUser, gotProduct, gotSize string
	gotQuantity                  int
}

func (m *mockCartService) AddOrMergeLineItem(_ context.Context, userID, productID, size string, quantity int) ([]domain.CartLineItem, error) {
	m.gotUser, m.gotProduct, m.gotSize, m.gotQuantity = userID, productID, size, quantity
	return m.cart, m.err
}

func (m *mockCartService) GetCart(_ context.Context, userID string) ([]domain.CartEntry, error) {
	m.gotUser = userID
	return m.entries, m.err
}

func (m *mockCartService) RemoveLineItem(_ context.Context, userID, productID, size string) ([]domain.CartLineItem, error) {
	m.gotUser, m.gotProduct, m.gotSize = userID, productID, size
	return m.cart, m.err
}

type mockTokens struct {
	claims *auth.Claims
	err    error
}

func (m mockTokens) ParseAccess(string) (*auth.Claims, error) {
	return m.claims, m.err
}

type mockAuthService struct {
	result  *service.LoginResult
	access  string
	claims  *auth.Claims
	authURL string
	err     error

	gotCode  string
	gotState string
}

func (m *mockAuthService) Login(context.Context, string, string) (*service.LoginResult, error) {
	return m.result, m.err
}

func (m *mockAuthService) Refresh(context.Context, string) (string, error) {
	return m.access, m.err
}

func (m *mockAuthService) DecodeToken(string) (*auth.Claims, error) {
	return m.claims, m.err
}

func (m *mockAuthService) GoogleAuthURL(state string) string {
	m.gotState = state
	return m.authURL + "?state=" + state
}

func (m *mockAuthService) GoogleLogin(_ context.Context, code string) (*service.LoginResult, error) {
	m.gotCode = code
	return m.result, m.err
}

type mockUploader struct {
	urls []string
	err  error

	gotFiles int
}

func (m *mockUploader) Upload(_ context.Context, files []*multipart.FileHeader, _ int) ([]string, error) {
	m.gotFiles += len(files)
	if m.err != nil {
		return nil, m.err
	}
	if len(files) == 0 {
		return []string{}, nil
	}
	return m.urls, nil
}

type mockUserService struct {
	user *domain.User
	list []domain.User
	page *service.UserPage
	err  error

	gotCreate service.CreateUserInput
	gotUpdate service.UpdateUserInput
	gotCaller domain.Identity
	gotPage   [2]int64
	gotDelete string
}

func (m *mockUserService) Create(_ context.Context, in service.CreateUserInput) (*domain.User, error) {
	m.gotCreate = in
	return m.user, m.err
}

func (m *mockUserService) List(context.Context) ([]domain.User, error) {
	return m.list, m.err
}

func (m *mockUserService) ListPage(_ context.Context, page, limit int64) (*service.UserPage, error) {
	m.gotPage = [2]int64{page, limit}
	return m.page, m.err
}

func (m *mockUserService) Update(_ context.Context, caller domain.Identity, in service.UpdateUserInput) (*domain.User, error) {
	m.gotCaller, m.gotUpdate = caller, in
	return m.user, m.err
}

func (m *mockUserService) Delete(_ context.Context, userID string) (*domain.User, error) {
	m.gotDelete = userID
	return m.user, m.err
}

type mockProductService struct {
	product    *domain.Product
	products   []domain.Product
	categories []string
	err        error

	gotCreate   service.CreateProductInput
	gotID       string
	gotCategory string
	gotPatch    service.ProductPatch
	gotSize     string
	gotQuantity int
}

func (m *mockProductService) Create(_ context.Context, in service.CreateProductInput) (*domain.Product, error) {
	m.gotCreate = in
	return m.product, m.err
}

func (m *mockProductService) List(context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *mockProductService) ListByCategory(_ context.Context, category string) ([]domain.Product, error) {
	m.gotCategory = category
	return m.products, m.err
}

func (m *mockProductService) Categories(context.Context) ([]string, error) {
	return m.categories, m.err
}

func (m *mockProductService) Get(_ context.Context, productID string) (*domain.Product, error) {
	m.gotID = productID
	return m.product, m.err
}

func (m *mockProductService) Update(_ context.Context, productID string, patch service.ProductPatch) (*domain.Product, error) {
	m.gotID, m.gotPatch = productID, patch
	return m.product, m.err
}

func (m *mockProductService) SetSizeQuantity(_ context.Context, productID, size string, quantity int) (*domain.Product, error) {
	m.gotID, m.gotSize, m.gotQuantity = productID, size, quantity
	return m.product, m.err
}

func (m *mockProductService) Delete(_ context.Context, productID string) error {
	m.gotID = productID
	return m.err
}

type mockOrderService struct {
	order  *domain.Order
	orders []domain.Order
	err    error

	gotUser   string
	gotInput  service.CreateOrderInput
	gotID     string
	gotStatus domain.OrderStatus
}

func (m *mockOrderService) Create(_ context.Context, userID string, in service.CreateOrderInput) (*domain.Order, error) {
	m.gotUser, m.gotInput = userID, in
	return m.order, m.err
}

func (m *mockOrderService) List(context.Context) ([]domain.Order, error) {
	return m.orders, m.err
}

func (m *mockOrderService) UpdateStatus(_ context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	m.gotID, m.gotStatus = orderID, status
	return m.order, m.err
}

type mockCategoryService struct {
	category   *domain.CategoryHomepage
	categories []domain.CategoryHomepage
	err        error

	gotCategory string
	gotImages   []string
}

func (m *mockCategoryService) Create(_ context.Context, category, _ string, mainImage []string) (*domain.CategoryHomepage, error) {
	m.gotCategory, m.gotImages = category, mainImage
	return m.category, m.err
}

func (m *mockCategoryService) List(context.Context) ([]domain.CategoryHomepage, error) {
	return m.categories, m.err
}

func (m *mockCategoryService) Search(_ context.Context, category string) ([]domain.CategoryHomepage, error) {
	m.gotCategory = category
	return m.categories, m.err
}
