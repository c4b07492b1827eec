package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/gopherblog/internal/server/models"
)

func bindQuery(c echo.Context) (models.PostQuery, error) {
	var q models.PostQuery
	err := echo.QueryParamsBinder(c).
		Int("limit", &q.Limit).
		Int("page", &q.Page).
		String("search", &q.Search).
		BindError()
	if err != nil {
		return q, echo.NewHTTPError(http.StatusUnprocessableEntity, "limit and page must be integers").SetInternal(err)
	}
	return q, nil
}

func (s *Server) listAuthorPosts(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	items, err := s.authors.List(c.Request().Context(), currentUserID(c), q)
	if err != nil {
		return internalError(err)
	}

	resp := postListResponse{Status: "success", Results: len(items), Posts: make([]postResponse, 0, len(items))}
	for i := range items {
		resp.Posts = append(resp.Posts, newPostResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) createPost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := s.authors.Create(c.Request().Context(), currentUserID(c), &models.Post{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Image:    req.Image,
	})
	if err != nil {
		return postError(err, "")
	}
	return c.JSON(http.StatusCreated, newPostResponse(post))
}

func (s *Server) getAuthorPost(c echo.Context) error {
	id := c.Param("id")
	post, err := s.authors.Get(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return postError(err, id)
	}
	return c.JSON(http.StatusOK, newPostResponse(post))
}

func (s *Server) updatePost(c echo.Context) error {
	id := c.Param("id")

	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := s.authors.Update(c.Request().Context(), currentUserID(c), id, req.patch())
	if err != nil {
		return postError(err, id)
	}
	return c.JSON(http.StatusOK, newPostResponse(post))
}

func (s *Server) deletePost(c echo.Context) error {
	id := c.Param("id")
	if err := s.authors.Delete(c.Request().Context(), currentUserID(c), id); err != nil {
		return postError(err, id)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) attachImage(c echo.Context) error {
	id := c.Param("id")
	up, err := s.authors.AttachImage(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return postError(err, id)
	}
	return c.JSON(http.StatusOK, imageUploadResponse{UploadURL: up.UploadURL, Image: up.Image})
}

func (s *Server) listPosts(c echo.Context) error {
	q, err := bindQuery(c)
	if err != nil {
		return err
	}

	items, err := s.posts.List(c.Request().Context(), q)
	if err != nil {
		return internalError(err)
	}

	resp := publicPostListResponse{Status: "success", Results: len(items), Posts: make([]publicPostResponse, 0, len(items))}
	for i := range items {
		resp.Posts = append(resp.Posts, newPublicPostResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getPost(c echo.Context) error {
	id := c.Param("id")
	post, err := s.posts.Get(c.Request().Context(), id)
	if err != nil {
		return postError(err, id)
	}
	return c.JSON(http.StatusOK, newPublicPostResponse(post))
}
