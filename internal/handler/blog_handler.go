package handler

import (
	"bytes"
	"net/http"

	"github.com/carmarket/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown converts user-authored markdown into sanitized HTML.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}

// GetBlogs returns approved blogs with pagination.
func (a *API) GetBlogs(c *gin.Context) {
	blogs, err := a.blogs.ListApproved(parseIntQuery(c, "page", 1), parseIntQuery(c, "per_page", 10))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": blogs})
}

// GetFeaturedBlogs returns the most viewed approved blogs.
func (a *API) GetFeaturedBlogs(c *gin.Context) {
	blogs, err := a.blogs.Featured(parseIntQuery(c, "limit", 3))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": blogs})
}

// GetAdminBlogs returns the moderation queue, optionally filtered by status.
func (a *API) GetAdminBlogs(c *gin.Context) {
	blogs, err := a.blogs.List(c.Query("status"), parseIntQuery(c, "page", 1), parseIntQuery(c, "per_page", 20))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": blogs})
}

// GetUserBlogs returns the caller's own blogs.
func (a *API) GetUserBlogs(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	blogs, err := a.blogs.ListByAuthor(actor.ID, c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blogs": blogs})
}

// GetBlog returns a single blog with rendered content, its comments and the
// viewer's like state. Unapproved blogs are visible only to their author and
// admins.
func (a *API) GetBlog(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := a.blogs.Get(id, optionalActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blog":           detail.Blog,
		"content_html":   renderMarkdown(detail.Blog.FullContent),
		"comments":       detail.Comments,
		"user_has_liked": detail.ViewerLiked,
	})
}

// CreateBlog submits a new blog for moderation.
func (a *API) CreateBlog(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var input service.BlogInput
	if !bindJSON(c, &input, "invalid blog payload") {
		return
	}

	blog, err := a.blogs.Create(actor.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"blog": blog})
}

// UpdateBlog applies a partial edit. Non-admin edits re-submit the blog as
// pending.
func (a *API) UpdateBlog(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var patch service.BlogPatch
	if !bindJSON(c, &patch, "invalid blog payload") {
		return
	}

	result, err := a.blogs.Update(id, actor, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"blog":            result.Blog,
		"previous_status": result.PreviousStatus,
		"resubmitted":     result.Resubmitted,
	})
}

// DeleteBlog removes a blog and its comments.
func (a *API) DeleteBlog(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.blogs.Delete(id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ModerateBlog applies an admin decision to a blog.
func (a *API) ModerateBlog(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Status           string `json:"status" binding:"required"`
		ModeratorComment string `json:"moderator_comment"`
	}
	if !bindJSON(c, &body, "status is required") {
		return
	}

	blog, err := a.blogs.Moderate(id, actor, service.Decision{
		Status:           body.Status,
		ModeratorID:      actor.ID,
		ModeratorComment: body.ModeratorComment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blog": blog})
}

// IncrementBlogViews bumps a blog's view counter.
func (a *API) IncrementBlogViews(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.blogs.IncrementViews(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LikeBlog records a like for the caller.
func (a *API) LikeBlog(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.blogs.Like(id, actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlikeBlog removes the caller's like.
func (a *API) UnlikeBlog(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.blogs.Unlike(id, actor.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateComment attaches a comment to a blog.
func (a *API) CreateComment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &body, "invalid comment payload") {
		return
	}

	comment, err := a.comments.Add(id, actor.ID, body.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// DeleteComment removes a comment.
func (a *API) DeleteComment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.comments.Delete(id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
