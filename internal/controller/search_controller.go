package controller

import (
	"github.com/on-par/vemorable-sub000/internal/dto"
	"github.com/on-par/vemorable-sub000/internal/pkg/serverutils"
	"github.com/on-par/vemorable-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
}

func NewSearchController(searchService service.ISearchService) ISearchController {
	return &searchController{
		searchService: searchService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Search)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	req := dto.SearchRequest{
		Query:  ctx.Query("q"),
		Mode:   ctx.Query("mode"),
		Count:  ctx.QueryInt("count", 0),
		Limit:  ctx.QueryInt("limit", 0),
		Offset: ctx.QueryInt("offset", 0),
	}
	if raw := ctx.QueryFloat("threshold", -1); raw >= 0 {
		req.Threshold = &raw
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search notes", res))
}
