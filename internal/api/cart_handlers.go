package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"relogio-be/internal/cart"
	"relogio-be/internal/db"
	"relogio-be/internal/models"
)

// buildCartView joins the cart references with the current catalog and
// computes the line subtotals and the total. Items whose product has been
// removed from the catalog are dropped from the view.
func (s *server) buildCartView(userID string) (models.CartView, error) {
	view := models.CartView{Items: []models.CartLine{}}
	for _, item := range s.Carts.Items(userID) {
		product, err := s.Store.GetProductByID(item.ProductID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				s.Carts.Remove(userID, item.ProductID)
				continue
			}
			return models.CartView{}, err
		}
		line := models.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Brand:     product.Brand,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
			Quantity:  item.Quantity,
			Subtotal:  product.Price * float64(item.Quantity),
		}
		view.Items = append(view.Items, line)
		view.Total += line.Subtotal
	}
	return view, nil
}

// GetCart returns the cart of the authenticated user with prices joined in.
func (s *server) GetCart(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	view, err := s.buildCartView(user.ID)
	if err != nil {
		log.Printf("GetCart: error building cart for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}
	writeJSONSuccess(w, "Cart", view)
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds a quantity of a product, accumulating with what is already
// there.
func (s *server) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := s.Store.GetProductByID(req.ProductID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("AddToCart: error loading product %s: %v", req.ProductID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load product")
		return
	}

	if err := s.Carts.Add(user.ID, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("AddToCart: error adding item for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not update cart")
		return
	}
	s.respondWithCart(w, user.ID, "Item added")
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem overwrites the quantity of one cart line.
func (s *server) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	productID := chi.URLParam(r, "productID")

	var req cartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.Carts.SetQuantity(user.ID, productID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("UpdateCartItem: error updating item for %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not update cart")
		return
	}
	s.respondWithCart(w, user.ID, "Quantity updated")
}

// RemoveCartItem removes one product from the cart. Removing an absent
// product is a no-op.
func (s *server) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	s.Carts.Remove(user.ID, chi.URLParam(r, "productID"))
	s.respondWithCart(w, user.ID, "Item removed")
}

// ClearCart empties the cart.
func (s *server) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	s.Carts.Clear(user.ID)
	s.respondWithCart(w, user.ID, "Cart cleared")
}

func (s *server) respondWithCart(w http.ResponseWriter, userID, message string) {
	view, err := s.buildCartView(userID)
	if err != nil {
		log.Printf("respondWithCart: error building cart for %s: %v", userID, err)
		writeJSONError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}
	writeJSONSuccess(w, message, view)
}
