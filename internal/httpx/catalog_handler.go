package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saptarimadira/trader-backend/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
	Log  *zap.Logger
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/low-stock", h.lowStock)
		r.Get("/{id}", h.getProduct)
		r.Post("/", h.createProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
		r.Post("/{id}/stock", h.adjustStock)
	})
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Get("/{id}", h.getCategory)
		r.Post("/", h.createCategory)
		r.Put("/{id}", h.updateCategory)
		r.Delete("/{id}", h.deleteCategory)
	})
	r.Route("/api/godowns", func(r chi.Router) {
		r.Get("/", h.listGodowns)
		r.Get("/{id}", h.getGodown)
		r.Post("/", h.createGodown)
		r.Put("/{id}", h.updateGodown)
		r.Delete("/{id}", h.deleteGodown)
	})
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if s := r.URL.Query().Get("category_id"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
			categoryID = n
		}
	}
	out, err := h.Repo.ListProducts(r.Context(), r.URL.Query().Get("search"), categoryID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 10
	if s := r.URL.Query().Get("threshold"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			threshold = n
		}
	}
	out, err := h.Repo.LowStock(r.Context(), threshold)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	p, err := h.Repo.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if p.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if p.CartonSize <= 0 {
		p.CartonSize = 12
	}
	if err := h.Repo.CreateProduct(r.Context(), &p); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"product": p,
	})
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p.ID = id
	if err := h.Repo.UpdateProduct(r.Context(), &p); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": p,
	})
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	if err := h.Repo.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *CatalogHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	var body struct {
		GodownID int64 `json:"godown_id"`
		Delta    int   `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if body.GodownID <= 0 || body.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "godown_id and a non-zero delta are required"})
		return
	}
	qty, err := h.Repo.AdjustStock(r.Context(), id, body.GodownID, body.Delta)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id": id,
		"godown_id":  body.GodownID,
		"quantity":   qty,
	})
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.Repo.ListCategories(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}
	c, err := h.Repo.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var c catalog.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if c.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if err := h.Repo.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Category created successfully",
		"category": c,
	})
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}
	var c catalog.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	c.ID = id
	if err := h.Repo.UpdateCategory(r.Context(), &c); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Category updated successfully",
		"category": c,
	})
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}
	if err := h.Repo.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

func (h *CatalogHandler) listGodowns(w http.ResponseWriter, r *http.Request) {
	out, err := h.Repo.ListGodowns(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []catalog.Godown{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getGodown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid godown id"})
		return
	}
	g, err := h.Repo.GetGodown(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *CatalogHandler) createGodown(w http.ResponseWriter, r *http.Request) {
	var g catalog.Godown
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if g.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if err := h.Repo.CreateGodown(r.Context(), &g); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Godown created successfully",
		"godown":  g,
	})
}

func (h *CatalogHandler) updateGodown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid godown id"})
		return
	}
	var g catalog.Godown
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	g.ID = id
	if err := h.Repo.UpdateGodown(r.Context(), &g); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Godown updated successfully",
		"godown":  g,
	})
}

func (h *CatalogHandler) deleteGodown(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid godown id"})
		return
	}
	if err := h.Repo.DeleteGodown(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Godown deleted successfully"})
}
