package server

import (
	"context"
	"fmt"

	"newsdesk/internal/admin"
	"newsdesk/internal/cache"
	"newsdesk/internal/featureflags"
	"newsdesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// fiberRequest exposes a fiber request to the admin layer. Values are read
// from route parameters first, then from the query string.
type fiberRequest struct {
	c *fiber.Ctx
}

func (r fiberRequest) Get(key string) string {
	if v := r.c.Params(key); v != "" {
		return v
	}
	return r.c.Query(key)
}

// URL renders a named route. fiber yields an empty location for unknown
// names, which is reported as ErrUnknownRoute.
func (r fiberRequest) URL(routeName string, params map[string]any) (string, error) {
	location, err := r.c.GetRouteURL(routeName, fiber.Map(params))
	if err != nil {
		return "", err
	}
	if location == "" {
		return "", fmt.Errorf("%w: %s", admin.ErrUnknownRoute, routeName)
	}
	return location, nil
}

func withRequest(c *fiber.Ctx) context.Context {
	return admin.WithRequest(c.UserContext(), fiberRequest{c: c})
}

// registerAdminRoutes mounts the CRUD routes of a under r. GET routes are
// named "<route name>_<action>" so admins can generate links to each other.
func (s *Server) registerAdminRoutes(r fiber.Router, a admin.Admin) {
	b := a.AdminBase()
	base := b.RoutePattern()
	item := base + "/:" + b.IDParameter()
	name := b.RouteName()

	gate := s.moduleGate(a)
	r.Get(base+"/list", gate, s.adminList(a)).Name(name + "_list")
	r.Get(base+"/create", gate, s.adminForm(a, "create")).Name(name + "_create")
	r.Post(base+"/create", gate, s.adminCreate(a))
	r.Get(item+"/show", gate, s.adminShow(a)).Name(name + "_show")
	r.Get(item+"/edit", gate, s.adminForm(a, "edit")).Name(name + "_edit")
	r.Post(item+"/edit", gate, s.adminUpdate(a))
	r.Post(item+"/delete", gate, s.adminDelete(a)).Name(name + "_delete")
}

// moduleEnabled reports whether the editor may use a. A child admin is
// hidden along with its parent.
func (s *Server) moduleEnabled(a admin.Admin, userID uint) bool {
	for a != nil {
		b := a.AdminBase()
		if !s.flags.EnabledOr(b.Code(), userID, true) {
			return false
		}
		a = b.Parent()
	}
	return true
}

// moduleGate answers 404 for admins switched off for the current editor.
func (s *Server) moduleGate(a admin.Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(uint)
		if !s.moduleEnabled(a, userID) {
			return s.respondError(c, models.NewNotFoundError("Admin", a.AdminBase().Code()))
		}
		return c.Next()
	}
}

type fieldView struct {
	Name      string         `json:"name"`
	Label     string         `json:"label"`
	Type      string         `json:"type,omitempty"`
	FieldType string         `json:"fieldType,omitempty"`
	Options   admin.Options  `json:"options,omitempty"`
	Choices   []admin.Choice `json:"choices,omitempty"`
}

type groupView struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Options admin.Options `json:"options,omitempty"`
	Fields  []fieldView   `json:"fields"`
}

type adminView struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Parent string `json:"parent,omitempty"`
}

func describeAdmin(a admin.Admin) adminView {
	b := a.AdminBase()
	v := adminView{Code: a.Code(), Label: b.Label()}
	if p := b.Parent(); p != nil {
		v.Parent = p.Code()
	}
	return v
}

// publicOptions drops the options that only make sense server side, such
// as filter callbacks.
func publicOptions(o admin.Options) admin.Options {
	out := admin.Options{}
	for k, v := range o {
		if _, ok := v.(admin.CallbackFunc); ok {
			continue
		}
		out[k] = v
	}
	return out
}

func viewFields(b *admin.Base, fields []*admin.FieldDescription) []fieldView {
	out := make([]fieldView, 0, len(fields))
	for _, fd := range fields {
		out = append(out, fieldView{
			Name:      fd.Name,
			Label:     b.Trans(fd.Name),
			Type:      fd.Type,
			FieldType: fd.FieldType,
			Options:   publicOptions(fd.Options),
		})
	}
	return out
}

// formGroups describes the form of a, listing the selectable objects of
// its relation fields.
func formGroups(ctx context.Context, a admin.Admin) ([]groupView, error) {
	b := a.AdminBase()
	form := b.FormFields()
	model := a.NewInstance()

	groups := make([]groupView, 0, len(form.Groups()))
	for _, g := range form.Groups() {
		gv := groupView{Name: g.Name, Label: b.Trans(g.Name), Options: publicOptions(g.Options)}
		for _, name := range g.Fields {
			fd, _ := form.Get(name)
			fv := viewFields(b, []*admin.FieldDescription{fd})[0]
			if fd.Type == admin.TypeModel || fd.Type == admin.TypeManyToMany {
				choices, err := b.ModelManager().Choices(ctx, model, fd.Name)
				if err != nil {
					return nil, err
				}
				fv.Choices = choices
			}
			gv.Fields = append(gv.Fields, fv)
		}
		groups = append(groups, gv)
	}
	return groups, nil
}

// adminList serves one filtered page of a's list.
// @Summary List objects
// @Description Paginated admin list with the admin's datagrid filters applied
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} object{admin=object,columns=[]object,filters=[]object,result=admin.ListResult,menu=admin.MenuItem}
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/news/post/list [get]
// @Router /admin/news/post/{id}/comment/list [get]
func (s *Server) adminList(a admin.Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := withRequest(c)
		res, err := admin.List(ctx, a, fiberRequest{c: c}, c.QueryInt("page", 1), s.config.AdminPageSize)
		if err != nil {
			return s.respondError(c, err)
		}
		menu, err := admin.BuildSideMenu(ctx, a, "list")
		if err != nil {
			return s.respondError(c, err)
		}
		b := a.AdminBase()
		return c.JSON(fiber.Map{
			"admin":   describeAdmin(a),
			"columns": viewFields(b, b.ListFields().Fields()),
			"filters": viewFields(b, b.DatagridFields().Fields()),
			"result":  res,
			"menu":    menu,
		})
	}
}

// adminForm serves the create and edit forms. The edit form carries the
// current object.
func (s *Server) adminForm(a admin.Admin, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := withRequest(c)
		body := fiber.Map{"admin": describeAdmin(a), "action": action}

		if action == "edit" {
			obj, err := admin.Show(ctx, a, c.Params(a.AdminBase().IDParameter()))
			if err != nil {
				return s.respondError(c, err)
			}
			body["object"] = obj
		}

		groups, err := formGroups(ctx, a)
		if err != nil {
			return s.respondError(c, err)
		}
		body["groups"] = groups

		menu, err := admin.BuildSideMenu(ctx, a, action)
		if err != nil {
			return s.respondError(c, err)
		}
		body["menu"] = menu
		return c.JSON(body)
	}
}

// objectKey is the cache key of the object id of a. A nested object's key
// lives under its parent's so deleting the parent drops it.
func objectKey(c *fiber.Ctx, a admin.Admin, id string) string {
	p := a.AdminBase().Parent()
	if p == nil {
		return cache.ObjectKey(a.Code(), id)
	}
	return cache.ChildKey(objectKey(c, p, c.Params(p.AdminBase().IDParameter())), a.Code(), id)
}

// adminShow serves an object through the object cache.
// @Summary Show an object
// @Tags admin
// @Produce json
// @Param id path int true "Post ID"
// @Param childId path int false "Comment ID"
// @Success 200 {object} object{admin=object,fields=[]object,object=object,menu=admin.MenuItem}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/news/post/{id}/show [get]
// @Router /admin/news/post/{id}/comment/{childId}/show [get]
func (s *Server) adminShow(a admin.Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := withRequest(c)
		id := c.Params(a.AdminBase().IDParameter())

		obj := a.NewInstance()
		err := cache.Aside(ctx, objectKey(c, a, id), obj, cache.ObjectTTL, func() error {
			return admin.Load(ctx, a, obj, id)
		})
		if err == nil {
			err = admin.CheckScope(ctx, a, obj)
		}
		if err != nil {
			return s.respondError(c, err)
		}

		menu, err := admin.BuildSideMenu(ctx, a, "show")
		if err != nil {
			return s.respondError(c, err)
		}
		b := a.AdminBase()
		return c.JSON(fiber.Map{
			"admin":  describeAdmin(a),
			"fields": viewFields(b, b.ShowFields().Fields()),
			"object": obj,
			"menu":   menu,
		})
	}
}

func parseForm(c *fiber.Ctx) (admin.FormData, error) {
	data := admin.FormData{}
	if err := c.BodyParser(&data); err != nil {
		return nil, models.NewValidationError("Invalid request body")
	}
	return data, nil
}

// adminCreate binds, validates and stores a new object.
// @Summary Create an object
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object true "Form values"
// @Success 201 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/news/post/create [post]
// @Router /admin/news/post/{id}/comment/create [post]
func (s *Server) adminCreate(a admin.Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := parseForm(c)
		if err != nil {
			return s.respondError(c, err)
		}
		obj, err := admin.Create(withRequest(c), a, data)
		if err != nil {
			return s.respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(obj)
	}
}

// adminUpdate applies submitted form values to an object.
// @Summary Update an object
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param childId path int false "Comment ID"
// @Param request body object true "Form values"
// @Success 200 {object} object
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/news/post/{id}/edit [post]
// @Router /admin/news/post/{id}/comment/{childId}/edit [post]
func (s *Server) adminUpdate(a admin.Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params(a.AdminBase().IDParameter())
		data, err := parseForm(c)
		if err != nil {
			return s.respondError(c, err)
		}
		ctx := withRequest(c)
		obj, err := admin.Update(ctx, a, id, data)
		if err != nil {
			return s.respondError(c, err)
		}
		cache.Invalidate(ctx, objectKey(c, a, id))
		return c.JSON(obj)
	}
}

// adminDelete removes an object.
// @Summary Delete an object
// @Tags admin
// @Param id path int true "Post ID"
// @Param childId path int false "Comment ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/news/post/{id}/delete [post]
// @Router /admin/news/post/{id}/comment/{childId}/delete [post]
func (s *Server) adminDelete(a admin.Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params(a.AdminBase().IDParameter())
		ctx := withRequest(c)
		if err := admin.Delete(ctx, a, id); err != nil {
			return s.respondError(c, err)
		}
		// Rows deleted with the object take their cached children along.
		cache.InvalidateTree(ctx, objectKey(c, a, id))
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Dashboard handles GET /admin/. It lists the top-level admins and the
// moderation backlog.
// @Summary Back-office dashboard
// @Tags admin
// @Produce json
// @Success 200 {object} object{admins=[]object,stats=object}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/ [get]
func (s *Server) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("userID").(uint)

	entries := []fiber.Map{}
	for _, a := range s.pool.Admins() {
		b := a.AdminBase()
		if b.IsChild() || !s.moduleEnabled(a, userID) {
			continue
		}
		list, err := fiberRequest{c: c}.URL(b.RouteName()+"_list", nil)
		if err != nil {
			return s.respondError(c, err)
		}
		entries = append(entries, fiber.Map{
			"admin":    describeAdmin(a),
			"list":     list,
			"children": len(b.Children()),
		})
	}

	out := fiber.Map{"admins": entries}
	if s.flags.EnabledOr(featureflags.DashboardStats, userID, true) {
		stats, err := s.dashboardStats(ctx)
		if err != nil {
			return s.respondError(c, err)
		}
		out["stats"] = stats
	}
	return c.JSON(out)
}

func (s *Server) dashboardStats(ctx context.Context) (fiber.Map, error) {
	open, err := s.postRepo.CountWithOpenComments(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.commentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	comments := make(map[string]int64, len(byStatus))
	for _, st := range models.CommentStatusList() {
		comments[st.Label] = byStatus[st.Value]
	}

	return fiber.Map{
		"postsWithOpenComments": open,
		"comments":              comments,
	}, nil
}
