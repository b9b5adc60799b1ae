package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/library-service/internal/app"
	"github.com/jsamuelsen/library-service/internal/platform/logging"
)

// BookHandler serves the /api/books endpoints.
type BookHandler struct {
	service *app.BookService
}

// NewBookHandler creates a book handler.
func NewBookHandler(service *app.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// ListBooks handles GET /api/books?author=<name>.
// An author without books, including a missing or empty author, yields 404.
func (h *BookHandler) ListBooks(c *gin.Context) {
	ctx := c.Request.Context()
	author := c.Query("author")

	books, err := h.service.ListByAuthor(ctx, author)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if len(books) == 0 {
		c.JSON(http.StatusNotFound, dto.Failure(dto.MsgNoBooksForAuthor, nil))
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.MsgBooksFound, dto.NewBookListPayload(books)))
}

// CreateBook handles POST /api/books.
func (h *BookHandler) CreateBook(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBookRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "create book request rejected",
			slog.String("error", err.Error()),
		)
		dto.HandleRequestError(c, err, req)
		return
	}

	book, err := h.service.Create(ctx, req.ToInput())
	if err != nil {
		dto.HandleRequestError(c, err, req)
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.MsgBookSaved, dto.NewBookResponse(book)))
}

// RegisterBookRoutes registers the book routes on rg. Guards run before
// CreateBook only; reads stay open.
func (h *BookHandler) RegisterBookRoutes(rg *gin.RouterGroup, writeGuards ...gin.HandlerFunc) {
	books := rg.Group("/books")
	books.GET("", h.ListBooks)

	create := append(append([]gin.HandlerFunc{}, writeGuards...), h.CreateBook)
	books.POST("", create...)
}
