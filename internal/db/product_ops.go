package db

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"relogio-be/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = fmt.Errorf("record not found")

// CreateProduct inserts a new product listing and returns it with its
// generated ID.
func (s *Store) CreateProduct(p models.Product) (models.Product, error) {
	p.ID = uuid.New().String()
	_, err := s.db.Exec(`
        INSERT INTO products (id, name, brand, price, description, image_url, images, stock, category, featured, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`,
		p.ID, p.Name, p.Brand, p.Price, p.Description, p.ImageURL, pq.Array(p.Images), p.Stock, p.Category, p.Featured)
	if err != nil {
		log.Printf("CreateProduct: error inserting product %q: %v", p.Name, err)
		return models.Product{}, err
	}
	log.Printf("Product %s (%s %s) created", p.ID, p.Brand, p.Name)
	return s.GetProductByID(p.ID)
}

// GetProductByID retrieves a single product.
func (s *Store) GetProductByID(id string) (models.Product, error) {
	var p models.Product
	var images pq.StringArray
	err := s.db.QueryRow(`
        SELECT id, name, brand, price, COALESCE(description, ''), COALESCE(image_url, ''), images,
               stock, COALESCE(category, ''), featured, created_at, updated_at
        FROM products WHERE id=$1`, id).Scan(
		&p.ID, &p.Name, &p.Brand, &p.Price, &p.Description, &p.ImageURL, &images,
		&p.Stock, &p.Category, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, ErrNotFound
		}
		log.Printf("GetProductByID: error fetching product %s: %v", id, err)
		return p, err
	}
	p.Images = images
	return p, nil
}

// ListProducts returns the catalog ordered with featured items first, then
// newest first. An empty category returns everything.
func (s *Store) ListProducts(category string) ([]models.Product, error) {
	query := `
        SELECT id, name, brand, price, COALESCE(description, ''), COALESCE(image_url, ''), images,
               stock, COALESCE(category, ''), featured, created_at, updated_at
        FROM products`
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY featured DESC, created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Printf("ListProducts: error querying products (category %q): %v", category, err)
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var images pq.StringArray
		errScan := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Price, &p.Description, &p.ImageURL, &images,
			&p.Stock, &p.Category, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
		if errScan != nil {
			log.Printf("ListProducts: error scanning product row: %v", errScan)
			continue
		}
		p.Images = images
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		log.Printf("ListProducts: error after row iteration: %v", err)
		return nil, err
	}
	return products, nil
}

// UpdateProduct overwrites the editable fields of a listing.
func (s *Store) UpdateProduct(p models.Product) error {
	res, err := s.db.Exec(`
        UPDATE products
        SET name=$1, brand=$2, price=$3, description=$4, image_url=$5, images=$6,
            stock=$7, category=$8, featured=$9, updated_at=NOW()
        WHERE id=$10`,
		p.Name, p.Brand, p.Price, p.Description, p.ImageURL, pq.Array(p.Images),
		p.Stock, p.Category, p.Featured, p.ID)
	if err != nil {
		log.Printf("UpdateProduct: error updating product %s: %v", p.ID, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("Product %s updated", p.ID)
	return nil
}

// SetProductFeatured toggles the storefront highlight flag.
func (s *Store) SetProductFeatured(id string, featured bool) error {
	res, err := s.db.Exec("UPDATE products SET featured=$1, updated_at=NOW() WHERE id=$2", featured, id)
	if err != nil {
		log.Printf("SetProductFeatured: error updating product %s: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a listing.
func (s *Store) DeleteProduct(id string) error {
	res, err := s.db.Exec("DELETE FROM products WHERE id=$1", id)
	if err != nil {
		log.Printf("DeleteProduct: error deleting product %s: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("Product %s deleted", id)
	return nil
}
