package server

import (
	"rehire/internal/models"
	"rehire/internal/repository"
	"rehire/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListHiringPosts handles GET /api/hiring-posts
func (s *Server) ListHiringPosts(c *fiber.Ctx) error {
	remote, err := parseOptionalBool(c, "remote")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	filter := repository.HiringPostFilter{
		Query:          c.Query("q"),
		Location:       c.Query("location"),
		Remote:         remote,
		EmploymentType: models.EmploymentType(c.Query("employmentType")),
		Skill:          c.Query("skill"),
		AuthorID:       uint(c.QueryInt("authorId", 0)),
		IncludeClosed:  c.QueryBool("includeClosed", false),
		Page:           page,
	}
	posts, total, err := s.hiring.Search(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, listResponse{
		Items: posts, Total: total, Limit: page.Limit, Offset: page.Offset,
	})
}

// GetHiringPost handles GET /api/hiring-posts/:id
func (s *Server) GetHiringPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.hiring.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// CreateHiringPost handles POST /api/hiring-posts
func (s *Server) CreateHiringPost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	var req service.HiringPostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.hiring.Create(c.UserContext(), userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusCreated, post)
}

// UpdateHiringPost handles PUT /api/hiring-posts/:id
func (s *Server) UpdateHiringPost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.HiringPostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.hiring.Update(c.UserContext(), id, userID, req)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// CloseHiringPost handles PATCH /api/hiring-posts/:id/close
func (s *Server) CloseHiringPost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.hiring.Close(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, post)
}

// DeleteHiringPost handles DELETE /api/hiring-posts/:id
func (s *Server) DeleteHiringPost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.hiring.Delete(c.UserContext(), id, userID); err != nil {
		return respondError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Hiring post deleted")
}
