package models

import "time"

// Product is a listing owned by a seller.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Stock       int            `json:"stock"`
	ImageURL    string         `json:"image_url"`
	SellerID    string         `json:"seller_id"`
	CreatedAt   time.Time      `json:"created_at"`
	Seller      *ProductSeller `json:"seller,omitempty"`
}

// ProductSeller is the seller information attached to a product listing.
type ProductSeller struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	SellerProfile *SellerProfile `json:"seller_profile,omitempty"`
}

// Default names used when a product's seller record is missing.
const (
	UnknownSeller   = "Unknown Seller"
	UnknownBusiness = "Unknown Business"
)

// ProductQuery filters the public marketplace listing.
type ProductQuery struct {
	Search string
	Limit  int
	Offset int
}

// ProductPage is one page of marketplace results.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"totalCount"`
}

// Shop is a seller's public storefront.
type Shop struct {
	Seller   UserSummary    `json:"seller"`
	Profile  *SellerProfile `json:"profile"`
	Products []Product      `json:"products"`
}

// CreateProductRequest is validated with go-playground/validator.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
}

// ImageUploadRequest asks for a presigned upload URL for a product image.
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUpload is the presigned target returned to the seller's browser.
type ImageUpload struct {
	UploadURL string            `json:"upload_url"`
	PublicURL string            `json:"public_url"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresIn int               `json:"expires_in"`
}
