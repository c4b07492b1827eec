package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/gopherblog/internal/client/client"
)

const listLimit = 20

var errUsageDelete = errors.New("usage: delpost <id>")

func (a *App) Posts(ctx context.Context, args []string) error {
	posts, err := a.api.Posts(ctx, listLimit, 1, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts")
		return nil
	}
	for _, p := range posts {
		fmt.Fprintf(a.out, "%s  %-30s  [%s] by %s, %s\n", p.ID, p.Title, p.Category, p.User.Name, p.UpdatedAt)
	}
	return nil
}

func (a *App) MyPosts(ctx context.Context, args []string) error {
	var posts []client.Post
	err := a.authorized(ctx, func() (err error) {
		posts, err = a.api.MyPosts(ctx, listLimit, 1, strings.Join(args, " "))
		return err
	})
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts")
		return nil
	}
	for _, p := range posts {
		fmt.Fprintf(a.out, "%s  %-30s  [%s] %s\n", p.ID, p.Title, p.Category, p.UpdatedAt)
	}
	return nil
}

func (a *App) AddPost(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Enter category", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Enter content", a.out)
	if err != nil {
		return err
	}

	var post *client.Post
	err = a.authorized(ctx, func() (err error) {
		post, err = a.api.CreatePost(ctx, client.NewPost{Title: title, Content: content, Category: category})
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created post %s\n", post.ID)
	return nil
}

func (a *App) DeletePost(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsageDelete
	}

	if err := a.authorized(ctx, func() error { return a.api.DeletePost(ctx, args[0]) }); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Deleted post %s\n", args[0])
	return nil
}

var errUsageImage = errors.New("usage: image <id> <file>")

// readFile is swapped in tests.
var readFile = os.ReadFile

// UploadImage attaches an image to one of the user's posts: the server
// hands out a presigned URL and the file goes straight to object storage.
func (a *App) UploadImage(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsageImage
	}
	id, path := args[0], args[1]

	data, err := readFile(path)
	if err != nil {
		return err
	}

	var up *client.ImageUpload
	err = a.authorized(ctx, func() (err error) {
		up, err = a.api.AttachImage(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	if err := a.api.UploadObject(ctx, up.UploadURL, data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Image uploaded: %s\n", up.Image)
	return nil
}
