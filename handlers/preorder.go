package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"food-court-api/events"
	"food-court-api/models"
	"food-court-api/report"
	"food-court-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Quantity accepts both JSON numbers and numeric strings. Any other value
// decodes to notAnInteger so it fails validation on its own line.
type Quantity int

const notAnInteger = Quantity(math.MinInt32)

func (q *Quantity) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*q = 0
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > math.MaxInt32 {
			*q = notAnInteger
			return nil
		}
		*q = Quantity(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil || n < math.MinInt32+1 || n > math.MaxInt32 {
			*q = notAnInteger
			return nil
		}
		*q = Quantity(n)
	default:
		*q = notAnInteger
	}
	return nil
}

type PreOrderLineRequest struct {
	MenuItemID string   `json:"menu_item_id" binding:"required,uuid"`
	Quantity   Quantity `json:"quantity" binding:"required,integer,min=1"`
}

type StorePreOrderRequest struct {
	Name  string                `json:"name" binding:"required,min=2,max=100"`
	Email string                `json:"email" binding:"required,email,max=255"`
	Items []PreOrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdatePreOrderStatusRequest struct {
	Status models.PreOrderStatus `json:"status" binding:"required"`
}

// PreOrder records a guest customer's cart. Every check runs before the first
// write, and the guest user plus all lines are written in one transaction.
func (h *Handler) PreOrder(c *gin.Context) {
	var req StorePreOrderRequest
	errs := FieldErrors{}
	if err := c.ShouldBindJSON(&req); err != nil {
		verrs, ok := toFieldErrors(err)
		if !ok {
			bindFailed(c, err)
			return
		}
		errs.Merge(verrs)
	}
	req.Email = strings.TrimSpace(req.Email)

	if req.Email != "" && !errs.Has("email") {
		var taken int64
		if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&taken).Error; err != nil {
			serverError(c, "Order not placed", err)
			return
		}
		if taken > 0 {
			errs.Add("email", "The email has already been taken.")
		}
	}

	items, err := h.checkLines(req.Items, errs)
	if err != nil {
		serverError(c, "Order not placed", err)
		return
	}
	if len(errs) > 0 {
		validationFailed(c, errs)
		return
	}

	user := models.User{Name: req.Name, Email: req.Email, IsGuest: true}
	created := make([]models.PreOrder, 0, len(req.Items))
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		for _, line := range req.Items {
			po := models.PreOrder{
				UserID:     user.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   int(line.Quantity),
				Status:     models.PreOrderPending,
			}
			if err := tx.Create(&po).Error; err != nil {
				return fmt.Errorf("create pre-order line %s: %w", line.MenuItemID, err)
			}
			if err := tx.Model(&models.MenuItem{}).Where("uuid = ?", line.MenuItemID).
				UpdateColumn("item_ordered", gorm.Expr("item_ordered + ?", int(line.Quantity))).Error; err != nil {
				return err
			}
			created = append(created, po)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			validationFailed(c, FieldErrors{"email": {"The email has already been taken."}})
			return
		}
		serverError(c, "Order not placed", err)
		return
	}

	h.publishPlaced(c.Request.Context(), user, created, items)

	c.JSON(http.StatusCreated, gin.H{
		"payload": req,
		"items":   req.Items,
	})
}

// checkLines enforces distinct item ids and their existence, returning the
// referenced items keyed by id.
func (h *Handler) checkLines(lines []PreOrderLineRequest, errs FieldErrors) (map[string]models.MenuItem, error) {
	seen := map[string]int{}
	ids := []string{}
	for i, line := range lines {
		key := fmt.Sprintf("items.%d.menu_item_id", i)
		if line.MenuItemID == "" || errs.Has(key) {
			continue
		}
		if j, dup := seen[line.MenuItemID]; dup {
			other := fmt.Sprintf("items.%d.menu_item_id", j)
			if !errs.Has(other) {
				errs.Add(other, fmt.Sprintf("The %s field has a duplicate value.", other))
			}
			errs.Add(key, fmt.Sprintf("The %s field has a duplicate value.", key))
			continue
		}
		seen[line.MenuItemID] = i
		ids = append(ids, line.MenuItemID)
	}

	found := map[string]models.MenuItem{}
	if len(ids) == 0 {
		return found, nil
	}
	var rows []models.MenuItem
	if err := h.DB.Where("uuid IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		found[r.UUID] = r
	}
	for id, i := range seen {
		if _, ok := found[id]; !ok {
			key := fmt.Sprintf("items.%d.menu_item_id", i)
			errs.Add(key, fmt.Sprintf("The selected %s is invalid.", key))
		}
	}
	return found, nil
}

func (h *Handler) publishPlaced(ctx context.Context, user models.User, lines []models.PreOrder, items map[string]models.MenuItem) {
	snap := events.PreOrderSnapshot{
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		UserID:        user.ID,
	}
	for _, po := range lines {
		item := items[po.MenuItemID]
		snap.Lines = append(snap.Lines, events.PreOrderLine{
			PreOrderID: po.UUID,
			MenuItemID: po.MenuItemID,
			Name:       item.Name,
			Quantity:   po.Quantity,
			Price:      item.Price,
		})
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	e := events.Event{Type: events.TypePreOrderPlaced, OccurredAt: time.Now().UTC(), PreOrder: snap}
	if err := h.Events.Publish(ctx, e); err != nil {
		h.Logger.Errorw("failed to publish pre-order event", "user_id", user.ID, "error", err)
		return
	}
	h.Logger.Infow("pre-order placed", "user_id", user.ID, "lines", len(lines))
}

// ListPreOrders returns every pre-order with its owner and menu item
func (h *Handler) ListPreOrders(c *gin.Context) {
	orders := []models.PreOrder{}
	if err := h.DB.Preload("User").Preload("MenuItem").Order("created_at desc").Find(&orders).Error; err != nil {
		serverError(c, "Failed to list pre-orders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// PreOrdersByCustomer is the admin view: pre-orders grouped per customer
func (h *Handler) PreOrdersByCustomer(c *gin.Context) {
	var orders []models.PreOrder
	if err := h.DB.Preload("User").Preload("MenuItem").Order("created_at asc").Find(&orders).Error; err != nil {
		serverError(c, "Failed to list pre-orders", err)
		return
	}
	c.JSON(http.StatusOK, report.GroupByCustomer(orders))
}

// UpdatePreOrderStatus moves a pre-order along its lifecycle
func (h *Handler) UpdatePreOrderStatus(c *gin.Context) {
	var req UpdatePreOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	var order models.PreOrder
	if err := h.DB.First(&order, "uuid = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c)
			return
		}
		serverError(c, "Failed to load pre-order", err)
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":           "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	prev := order.Status
	if err := h.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		serverError(c, "Failed to update pre-order", err)
		return
	}

	h.Logger.Infow("pre-order status changed", "pre_order_id", order.UUID, "from", prev, "to", req.Status)
	c.JSON(http.StatusOK, gin.H{
		"message":         "Pre-order status updated",
		"pre_order_id":    order.UUID,
		"previous_status": prev,
		"current_status":  req.Status,
	})
}
