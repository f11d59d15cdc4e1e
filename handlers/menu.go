package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"food-court-api/models"
	"food-court-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
)

const menuImageDir = "menu-items"

// MenuItemInput is the payload of create and update. A nil field was absent
// or null in the request.
type MenuItemInput struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Price       *int    `json:"price" binding:"omitempty,min=1"`
	ItemOrdered *int    `json:"item_ordered" binding:"omitempty,min=0"`
	IsAvailable *bool   `json:"is_available"`
}

// changes returns the columns to write, keyed by column name.
func (in MenuItemInput) changes() map[string]interface{} {
	out := map[string]interface{}{}
	if in.Name != nil {
		out["name"] = *in.Name
	}
	if in.Price != nil {
		out["price"] = *in.Price
	}
	if in.ItemOrdered != nil {
		out["item_ordered"] = *in.ItemOrdered
	}
	if in.IsAvailable != nil {
		out["is_available"] = *in.IsAvailable
	}
	return out
}

// bindMenuItem reads a JSON body or a (multipart) form into MenuItemInput and
// validates it. Empty values count as null in both.
func bindMenuItem(c *gin.Context) (MenuItemInput, FieldErrors, error) {
	var in MenuItemInput
	errs := FieldErrors{}

	if c.ContentType() == binding.MIMEJSON {
		if err := json.NewDecoder(c.Request.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			verrs, ok := toFieldErrors(err)
			if !ok {
				return in, nil, err
			}
			return in, verrs, nil
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
			in.Name = nil
		}
		return in, errs, validateMenuItem(&in, errs)
	}

	if v, ok := formValue(c, "name"); ok {
		in.Name = &v
	}
	for key, dst := range map[string]**int{"price": &in.Price, "item_ordered": &in.ItemOrdered} {
		v, ok := formValue(c, key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.Add(key, fmt.Sprintf("The %s field must be an integer.", key))
			continue
		}
		*dst = &n
	}
	if v, ok := formValue(c, "is_available"); ok {
		b, err := parseBool(v)
		if err != nil {
			errs.Add("is_available", "The is_available field must be true or false.")
		} else {
			in.IsAvailable = &b
		}
	}

	return in, errs, validateMenuItem(&in, errs)
}

func validateMenuItem(in *MenuItemInput, errs FieldErrors) error {
	if err := binding.Validator.ValidateStruct(in); err != nil {
		verrs, ok := toFieldErrors(err)
		if !ok {
			return err
		}
		errs.Merge(verrs)
	}
	return nil
}

// withImageURL fills the public address of the stored image.
func (h *Handler) withImageURL(item *models.MenuItem) {
	item.ImageURL = ""
	if item.ImgURL != nil && *item.ImgURL != "" {
		item.ImageURL = h.Disk.URL(*item.ImgURL)
	}
}

func formValue(c *gin.Context, key string) (string, bool) {
	v, ok := c.GetPostForm(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	}
	return false, errors.New("not a boolean")
}

// uploadedImage returns the optional "img" file after validating it.
func (h *Handler) uploadedImage(c *gin.Context, errs FieldErrors) *multipart.FileHeader {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil
	}
	file, err := c.FormFile("img")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			errs.Add("img", "The img failed to upload.")
		}
		return nil
	}
	switch err := storage.ValidateImage(file, h.MaxImageBytes); {
	case errors.Is(err, storage.ErrImageTooLarge):
		errs.Add("img", fmt.Sprintf("The img field must not be greater than %d kilobytes.", h.MaxImageBytes/1024))
	case errors.Is(err, storage.ErrImageType):
		errs.Add("img", "The img field must be a file of type: jpg, jpeg, png, webp.")
	case err != nil:
		errs.Add("img", "The img failed to upload.")
	}
	return file
}

// CreateItem adds a menu item, storing its image on the public disk
func (h *Handler) CreateItem(c *gin.Context) {
	in, errs, err := bindMenuItem(c)
	if err != nil {
		bindFailed(c, err)
		return
	}
	if in.Name == nil && !errs.Has("name") {
		errs.Add("name", "Item name is required.")
	}
	if in.Price == nil && !errs.Has("price") {
		errs.Add("price", "The price field is required.")
	}
	img := h.uploadedImage(c, errs)
	if len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	item := models.MenuItem{
		Name:        *in.Name,
		Price:       *in.Price,
		IsAvailable: true,
	}
	if in.ItemOrdered != nil {
		item.ItemOrdered = *in.ItemOrdered
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	if img != nil {
		path, err := h.Disk.Put(c.Request.Context(), menuImageDir, img)
		if err != nil {
			serverError(c, "Failed to save image", err)
			return
		}
		item.ImgURL = &path
	}

	if err := h.DB.Create(&item).Error; err != nil {
		if item.ImgURL != nil {
			_ = h.Disk.Delete(*item.ImgURL)
		}
		serverError(c, "Failed to create item", err)
		return
	}

	h.withImageURL(&item)
	h.Logger.Infow("menu item created", "item_id", item.UUID, "name", item.Name)
	c.JSON(http.StatusCreated, gin.H{"msg": "Item created successfully", "item": item})
}

// UpdateItem applies only the fields present and non-null in the request
func (h *Handler) UpdateItem(c *gin.Context) {
	var item models.MenuItem
	if err := h.DB.First(&item, "uuid = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c, "Failed to load item", err)
		return
	}

	in, errs, err := bindMenuItem(c)
	if err != nil {
		bindFailed(c, err)
		return
	}
	img := h.uploadedImage(c, errs)
	if len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	update := in.changes()
	var oldImage string
	if item.ImgURL != nil {
		oldImage = *item.ImgURL
	}
	if img != nil {
		path, err := h.Disk.Put(c.Request.Context(), menuImageDir, img)
		if err != nil {
			serverError(c, "Failed to save image", err)
			return
		}
		update["img_url"] = path
	}

	if len(update) > 0 {
		if err := h.DB.Model(&item).Updates(update).Error; err != nil {
			if path, ok := update["img_url"].(string); ok {
				_ = h.Disk.Delete(path)
			}
			serverError(c, "Failed to update item", err)
			return
		}
		if _, replaced := update["img_url"]; replaced && oldImage != "" {
			if err := h.Disk.Delete(oldImage); err != nil {
				h.Logger.Warnw("failed to remove replaced image", "path", oldImage, "error", err)
			}
		}
	}

	if err := h.DB.First(&item, "uuid = ?", item.UUID).Error; err != nil {
		serverError(c, "Failed to load item", err)
		return
	}
	h.withImageURL(&item)
	c.JSON(http.StatusOK, gin.H{"item": item, "collection": update})
}

// DeleteItem hard-deletes a menu item together with its pre-orders
func (h *Handler) DeleteItem(c *gin.Context) {
	var item models.MenuItem
	if err := h.DB.First(&item, "uuid = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c, "Failed to load item", err)
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", item.UUID).Delete(&models.PreOrder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		serverError(c, "Failed to delete item", err)
		return
	}

	if item.ImgURL != nil {
		if err := h.Disk.Delete(*item.ImgURL); err != nil {
			h.Logger.Warnw("failed to remove item image", "path", *item.ImgURL, "error", err)
		}
	}
	h.Logger.Infow("menu item deleted", "item_id", item.UUID)
	c.JSON(http.StatusOK, "Item deleted.")
}

// ListItems returns the menu; unavailable items are hidden when the listing
// policy says so or the caller asks with ?available=true
func (h *Handler) ListItems(c *gin.Context) {
	query := h.DB.Order("created_at asc")

	availableOnly := h.Runtime.Policy().MenuAvailableOnly
	if v, err := parseBool(c.Query("available")); err == nil && v {
		availableOnly = true
	}
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}

	items := []models.MenuItem{}
	if err := query.Find(&items).Error; err != nil {
		serverError(c, "Failed to list items", err)
		return
	}
	for i := range items {
		h.withImageURL(&items[i])
	}
	c.JSON(http.StatusOK, items)
}
