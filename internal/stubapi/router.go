package stubapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrea/backoffice/internal/catalog"
)

// DefaultPerPage is the variant page size when none is configured.
const DefaultPerPage = 10

type handler struct {
	store   *Store
	perPage int
	logger  *zap.Logger
}

type nameBody struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

type namedResource struct {
	singular string
	plural   string
	list     func() any
	get      func(int64) (any, error)
	create   func(string) any
	update   func(int64, string) (any, error)
	remove   func(int64) error
}

// NewRouter builds the gin engine serving the catalog REST contract from store.
func NewRouter(store *Store, perPage int, logger *zap.Logger) *gin.Engine {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{store: store, perPage: perPage, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), h.accessLog())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.registerNamed(r, namedResource{
		singular: "color",
		plural:   "colors",
		list:     func() any { return store.Colors() },
		get:      func(id int64) (any, error) { return store.Color(id) },
		create:   func(name string) any { return store.CreateColor(name) },
		update:   func(id int64, name string) (any, error) { return store.UpdateColor(id, name) },
		remove:   store.DeleteColor,
	})
	h.registerNamed(r, namedResource{
		singular: "size",
		plural:   "sizes",
		list:     func() any { return store.Sizes() },
		get:      func(id int64) (any, error) { return store.Size(id) },
		create:   func(name string) any { return store.CreateSize(name) },
		update:   func(id int64, name string) (any, error) { return store.UpdateSize(id, name) },
		remove:   store.DeleteSize,
	})

	r.GET("/products/:productId/variants", h.listVariants)
	r.POST("/products/:productId/variants", h.createVariant)
	r.PUT("/variants/:id", h.updateVariant)
	r.DELETE("/variants/:id", h.deleteVariant)
	return r
}

func (h *handler) registerNamed(r *gin.Engine, res namedResource) {
	base := "/" + res.plural
	r.GET(base, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": res.list()})
	})
	r.GET(base+"/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		rec, err := res.get(id)
		if err != nil {
			h.fail(c, err, res.singular)
			return
		}
		c.JSON(http.StatusOK, rec)
	})
	r.POST(base, func(c *gin.Context) {
		name, ok := bindName(c)
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, res.create(name))
	})
	r.PUT(base+"/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		name, ok := bindName(c)
		if !ok {
			return
		}
		rec, err := res.update(id, name)
		if err != nil {
			h.fail(c, err, res.singular)
			return
		}
		c.JSON(http.StatusOK, rec)
	})
	r.DELETE(base+"/:id", func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := res.remove(id); err != nil {
			h.fail(c, err, res.singular)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (h *handler) listVariants(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			validationError(c, "The page must be a positive integer.", map[string][]string{"page": {"The page must be a positive integer."}})
			return
		}
		page = n
	}
	items, current, last := h.store.Variants(productID, page, h.perPage)
	c.JSON(http.StatusOK, gin.H{
		"data":         items,
		"current_page": current,
		"last_page":    last,
		"per_page":     h.perPage,
	})
}

func (h *handler) createVariant(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	draft, ok := bindVariant(c)
	if !ok {
		return
	}
	v, err := h.store.CreateVariant(productID, draft)
	if err != nil {
		h.fail(c, err, "variant")
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *handler) updateVariant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	draft, ok := bindVariant(c)
	if !ok {
		return
	}
	v, err := h.store.UpdateVariant(id, draft)
	if err != nil {
		h.fail(c, err, "variant")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) deleteVariant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteVariant(id); err != nil {
		h.fail(c, err, "variant")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) fail(c *gin.Context, err error, singular string) {
	switch {
	case errors.Is(err, errMissing):
		c.JSON(http.StatusNotFound, gin.H{"message": titleCase(singular) + " not found."})
	case errors.Is(err, errInUse):
		c.JSON(http.StatusConflict, gin.H{"message": titleCase(singular) + " is used by existing variants."})
	case errors.Is(err, errConflict):
		msg := "This color and size combination already exists for the product."
		validationError(c, msg, map[string][]string{"color_id": {msg}})
	case errors.Is(err, errUnknownRef):
		field := "color_id"
		if strings.HasPrefix(err.Error(), "size_id") {
			field = "size_id"
		}
		msg := "The selected " + strings.TrimSuffix(field, "_id") + " is invalid."
		validationError(c, msg, map[string][]string{field: {msg}})
	default:
		h.logger.Error("stubapi: unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
	}
}

func bindName(c *gin.Context) (string, bool) {
	var body nameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		bindFailed(c, err)
		return "", false
	}
	name := strings.TrimSpace(body.Name)
	if n := len([]rune(name)); n < 2 {
		msg := "The name field must be at least 2 characters."
		validationError(c, msg, map[string][]string{"name": {msg}})
		return "", false
	}
	return name, true
}

func bindVariant(c *gin.Context) (catalog.VariantDraft, bool) {
	var draft catalog.VariantDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		bindFailed(c, err)
		return draft, false
	}
	fields := map[string][]string{}
	if draft.ColorID <= 0 {
		fields["color_id"] = []string{"The color id field is required."}
	}
	if draft.SizeID <= 0 {
		fields["size_id"] = []string{"The size id field is required."}
	}
	if draft.Price.IsNegative() {
		fields["price"] = []string{"The price field must be at least 0."}
	}
	if draft.SalePrice != nil && draft.SalePrice.IsNegative() {
		fields["sale_price"] = []string{"The sale price field must be at least 0."}
	}
	if len(fields) > 0 {
		validationError(c, firstMessage(fields), fields)
		return draft, false
	}
	return draft, true
}

func bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed JSON body."})
		return
	}
	fields := map[string][]string{}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		fields[name] = append(fields[name], ruleMessage(name, fe.Tag(), fe.Param()))
	}
	validationError(c, firstMessage(fields), fields)
}

func ruleMessage(field, tag, param string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return "The " + label + " field is required."
	case "min":
		return "The " + label + " field must be at least " + param + " characters."
	case "max":
		return "The " + label + " field must not be greater than " + param + " characters."
	default:
		return "The " + label + " field is invalid."
	}
}

func validationError(c *gin.Context, message string, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": message, "errors": fields})
}

func firstMessage(fields map[string][]string) string {
	for _, key := range []string{"name", "color_id", "size_id", "price", "sale_price", "page"} {
		if msgs := fields[key]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	for _, msgs := range fields {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "The given data was invalid."
}

func pathID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
		return 0, false
	}
	return id, true
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (h *handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("stubapi: request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

func titleCase(value string) string {
	if value == "" {
		return ""
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
