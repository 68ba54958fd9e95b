// Package contentController exposes the admin content editor. Every ordered
// relation gets the same six handlers, all routed through ordering.Manager so
// sibling positions stay dense.
package contentController

import (
	"log"

	"coursehub/database"
	"coursehub/middleware"
	"coursehub/services/notify"
	"coursehub/services/ordering"
	"coursehub/validators"
	contentValidator "coursehub/validators/content"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves one ordered relation. Routes supply :scope_id (the parent)
// and :item_id.
type Handlers[T any] struct {
	Label   string
	List    fiber.Handler
	Create  fiber.Handler
	Update  fiber.Handler
	Delete  fiber.Handler
	Reorder fiber.Handler
	Move    fiber.Handler
}

func manager[T any](rel ordering.Relation[T]) *ordering.Manager[T] {
	return ordering.NewManager(database.Database.Db, rel, notify.Default())
}

// newHandlers builds the handler set. build turns a create request into a
// draft; patch turns an update request into the changed columns.
func newHandlers[T, C, U any](label string, rel ordering.Relation[T], build func(*C) *T, patch func(*U) map[string]interface{}) Handlers[T] {
	return Handlers[T]{
		Label:   label,
		List:    listItems(label, rel),
		Create:  createItem(label, rel, build),
		Update:  updateItem(label, rel, patch),
		Delete:  deleteItem(label, rel),
		Reorder: reorderItems(label, rel),
		Move:    moveItem(label, rel),
	}
}

func listItems[T any](label string, rel ordering.Relation[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := manager(rel).List(c.UserContext(), validators.ID(c, "scope_id"))
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, label+" list fetched.", items)
	}
}

func createItem[T, C any](label string, rel ordering.Relation[T], build func(*C) *T) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := validators.Request[C](c)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		item := build(reqData)
		if err := manager(rel).Append(c.UserContext(), middleware.Actor(c), validators.ID(c, "scope_id"), item); err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusCreated, true, label+" created successfully!", item)
	}
}

// updateItem writes only the columns patch returns, so position and parent
// are never touched here.
func updateItem[T, U any](label string, rel ordering.Relation[T], patch func(*U) map[string]interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := middleware.Actor(c).RequireAdmin(); err != nil {
			return middleware.ErrorResponse(c, err)
		}
		reqData := validators.Request[U](c)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		ctx := c.UserContext()
		scopeID, itemID := validators.ID(c, "scope_id"), validators.ID(c, "item_id")
		m := manager(rel)
		if _, err := m.Get(ctx, scopeID, itemID); err != nil {
			return middleware.ErrorResponse(c, err)
		}

		changes := patch(reqData)
		if len(changes) > 0 {
			if err := database.Database.Db.WithContext(ctx).Model(new(T)).Where("id = ?", itemID).Updates(changes).Error; err != nil {
				return middleware.ErrorResponse(c, err)
			}
			if err := notify.Default().Changed(ctx, rel.Path(scopeID)); err != nil {
				log.Printf("[CONTENT] change notification for %s failed: %v", rel.Path(scopeID), err)
			}
		}

		item, err := m.Get(ctx, scopeID, itemID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, label+" updated successfully!", item)
	}
}

func deleteItem[T any](label string, rel ordering.Relation[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := manager(rel).Delete(c.UserContext(), middleware.Actor(c), validators.ID(c, "scope_id"), validators.ID(c, "item_id"))
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, label+" deleted successfully!", nil)
	}
}

func reorderItems[T any](label string, rel ordering.Relation[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := validators.Request[contentValidator.ReorderRequest](c)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		ctx := c.UserContext()
		scopeID := validators.ID(c, "scope_id")
		m := manager(rel)
		if err := m.Reorder(ctx, middleware.Actor(c), scopeID, reqData.IDs); err != nil {
			return middleware.ErrorResponse(c, err)
		}
		items, err := m.List(ctx, scopeID)
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, label+" order updated!", items)
	}
}

func moveItem[T any](label string, rel ordering.Relation[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := validators.Request[contentValidator.MoveRequest](c)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}

		item, err := manager(rel).Move(c.UserContext(), middleware.Actor(c),
			validators.ID(c, "scope_id"), reqData.To, validators.ID(c, "item_id"))
		if err != nil {
			return middleware.ErrorResponse(c, err)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, label+" moved successfully!", item)
	}
}

// set adds a pointer field to changes when the request carried it.
func set[V any](changes map[string]interface{}, column string, v *V) {
	if v != nil {
		changes[column] = *v
	}
}
