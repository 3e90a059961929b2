package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/hooklinehq/hookline/pkg/persistence"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// validationFailed returns the collected violation list of a rejected write.
func validationFailed(c fiber.Ctx, violations []string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail("configuration is invalid")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"type":       problem.Type,
		"title":      problem.Title,
		"status":     problem.Status,
		"instance":   problem.Instance,
		"detail":     problem.Detail,
		"violations": violations,
	})
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleStoreError maps persistence errors to problem responses.
func handleStoreError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsTriggerNotFound(err):
		return notFound(c, "trigger not found")
	case persistence.IsActionNotFound(err):
		return notFound(c, "action not found")
	case persistence.IsAutomationNotFound(err):
		return notFound(c, "automation not found")
	case persistence.IsExecutionNotFound(err):
		return notFound(c, "execution not found")
	default:
		return internalError(c, err)
	}
}
