package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Refresh(ctx context.Context) error
	Posts(ctx context.Context, args []string) error
	MyPosts(ctx context.Context, args []string) error
	AddPost(ctx context.Context) error
	DeletePost(ctx context.Context, args []string) error
	UploadImage(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// runREPL reads commands from reader until EOF or exit/quit. Command
// errors are printed and the loop continues.
//
//	Not logged in: help, register, login, posts [search], exit
//	Logged in:     help, me, refresh, posts [search], myposts [search],
//	               addpost, delpost <id>, image <id> <file>, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("blog%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, refresh, posts, myposts, addpost, delpost <id>, image <id> <file>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, posts, exit")
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "refresh":
			cmdErr = a.Refresh(ctx)
		case "posts":
			cmdErr = a.Posts(ctx, args)
		case "myposts":
			cmdErr = a.MyPosts(ctx, args)
		case "addpost":
			cmdErr = a.AddPost(ctx)
		case "delpost":
			cmdErr = a.DeletePost(ctx, args)
		case "image":
			cmdErr = a.UploadImage(ctx, args)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}
	}
}
