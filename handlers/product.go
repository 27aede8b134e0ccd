package handlers

import (
	"net/http"

	"github.com/akinalp/pazar/models"
	"github.com/akinalp/pazar/pkg"
	"github.com/akinalp/pazar/services"
)

// ProductHandler, ürün endpoint'leri.
type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// productQuery, katalog filtreleri:
//
//	?q=&sort=&page=&limit=&category=&brand=&store=&min_price=&max_price=&in_stock=1&featured=1
//
// category/brand/store ID veya slug olabilir.
func productQuery(r *http.Request) services.ProductQuery {
	q := r.URL.Query()
	return services.ProductQuery{
		ProductFilter: models.ProductFilter{
			ListParams: listParams(r),
			MinPrice:   queryMoney(r, "min_price"),
			MaxPrice:   queryMoney(r, "max_price"),
			InStock:    queryBool(r, "in_stock"),
			Featured:   queryBool(r, "featured"),
		},
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Store:    q.Get("store"),
	}
}

// List godoc
// GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := productQuery(r)
	products, total, err := h.productService.List(r.Context(), q)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, products, q.ListParams, total)
}

// Get godoc
// GET /api/products/{idOrSlug}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.Get(r.Context(), r.PathValue("idOrSlug"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, product)
}

// Related godoc
// GET /api/products/{idOrSlug}/related
func (h *ProductHandler) Related(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.Related(r.Context(), r.PathValue("idOrSlug"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	pkg.JSON(w, http.StatusOK, products)
}

// ListManaged godoc
// GET /api/manage/products
func (h *ProductHandler) ListManaged(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := productQuery(r)
	products, total, err := h.productService.ListManaged(r.Context(), user, q)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	paginated(w, products, q.ListParams, total)
}

// GetManaged godoc
// GET /api/manage/products/{id}
func (h *ProductHandler) GetManaged(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	product, err := h.productService.GetManaged(r.Context(), user, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, product)
}

// Create godoc
// POST /api/manage/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), user, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusCreated, product)
}

// Update godoc
// PATCH /api/manage/products/{id}
//
// "brand_id"/"category_id": null → bağlantıyı kaldır; alan yoksa değişmez.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	keys, ok := decodeJSONKeys(w, r, &req)
	if !ok {
		return
	}
	_, req.SetBrand = keys["brand_id"]
	_, req.SetCategory = keys["category_id"]

	product, err := h.productService.Update(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, product)
}

// Delete godoc
// DELETE /api/manage/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}
	message(w, "product deleted")
}

// AddImages godoc
// POST /api/manage/products/{id}/images
// Content-Type: multipart/form-data, bir veya daha fazla "files" alanı.
func (h *ProductHandler) AddImages(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	product, err := h.productService.AddImages(r.Context(), user, r.PathValue("id"), files)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, product)
}

// DeleteImage godoc
// DELETE /api/manage/products/{id}/images/{imageId}
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	product, err := h.productService.DeleteImage(r.Context(), user, r.PathValue("id"), r.PathValue("imageId"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, product)
}

// ReorderImages godoc
// PUT /api/manage/products/{id}/images/order
func (h *ProductHandler) ReorderImages(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.ReorderImagesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.ReorderImages(r.Context(), user, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, product)
}
