package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"relogio-be/internal/db"
	"relogio-be/internal/models"
)

// ListProducts returns the catalog, optionally filtered by category.
// Featured watches come first.
func (s *server) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != "" {
		if _, ok := models.ValidCategories[category]; !ok {
			writeJSONError(w, http.StatusBadRequest, "Unknown category")
			return
		}
	}

	products, err := s.Store.ListProducts(category)
	if err != nil {
		log.Printf("ListProducts: error listing products: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load products")
		return
	}
	writeJSONSuccess(w, "Products", products)
}

// GetProduct returns one product by ID.
func (s *server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := s.Store.GetProductByID(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("GetProduct: error loading product %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load product")
		return
	}
	writeJSONSuccess(w, "Product", product)
}

type productRequest struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Featured    bool     `json:"featured"`
}

func (req productRequest) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.Price <= 0 {
		return errors.New("price must be positive")
	}
	if req.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	if _, ok := models.ValidCategories[req.Category]; !ok {
		return errors.New("unknown category")
	}
	return nil
}

func (req productRequest) toModel() models.Product {
	return models.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Images:      req.Images,
		Stock:       req.Stock,
		Category:    req.Category,
		Featured:    req.Featured,
	}
}

// CreateProduct adds a watch to the catalog.
func (s *server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := s.Store.CreateProduct(req.toModel())
	if err != nil {
		log.Printf("CreateProduct: error creating product %q: %v", req.Name, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not create product")
		return
	}
	writeJSONSuccess(w, "Product created", product)
}

// UpdateProduct replaces all editable fields of a product.
func (s *server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := req.toModel()
	product.ID = id
	if err := s.Store.UpdateProduct(product); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("UpdateProduct: error updating product %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not update product")
		return
	}
	writeJSONSuccess(w, "Product updated", product)
}

type featuredRequest struct {
	Featured bool `json:"featured"`
}

// SetProductFeatured toggles the highlight flag of a product.
func (s *server) SetProductFeatured(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req featuredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.Store.SetProductFeatured(id, req.Featured); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("SetProductFeatured: error updating product %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not update product")
		return
	}
	writeJSONSuccess(w, "Product updated", nil)
}

// DeleteProduct removes a product from the catalog. Order snapshots keep
// their copy of the product data, so past orders are unaffected.
func (s *server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.DeleteProduct(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("DeleteProduct: error deleting product %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not delete product")
		return
	}
	writeJSONSuccess(w, "Product deleted", nil)
}
