package controllers

import (
	"coursehub/database"
	"coursehub/middleware"
	courseModels "coursehub/models/course"
	"coursehub/services/apperr"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates lists certificates issued to the caller
func GetUserCertificates(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if err := actor.RequireLearner(); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var certificates []courseModels.Certificate
	err := database.Database.Db.WithContext(c.UserContext()).
		Where("user_id = ?", actor.UserID).
		Order("issued_at desc").
		Find(&certificates).Error
	if err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// VerifyCertificate looks a certificate up by its public number
func VerifyCertificate(c *fiber.Ctx) error {
	var certificate courseModels.Certificate
	res := database.Database.Db.WithContext(c.UserContext()).
		Where("certificate_number = ?", c.Params("number")).
		Limit(1).
		Find(&certificate)
	if res.Error != nil {
		return middleware.ErrorResponse(c, apperr.Storage(res.Error))
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid.", certificate)
}

func AdminGetIssuedCertificates(c *fiber.Ctx) error {
	page := validators.PageOf(c)

	var certificates []courseModels.Certificate
	var total int64
	db := database.Database.Db.WithContext(c.UserContext()).Model(&courseModels.Certificate{}).
		Where("course_id = ?", validators.ID(c, "course_id"))
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}
	if err := db.Offset(page.Offset()).Limit(page.Limit).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.ErrorResponse(c, apperr.Storage(err))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}
