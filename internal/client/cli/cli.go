// Package cli реализует команды консольного клиента
package cli

import (
	"context"
	"fmt"

	"github.com/taskforge/taskforge/internal/client/api"
	"github.com/taskforge/taskforge/internal/client/iocli"
	"github.com/taskforge/taskforge/internal/client/storage"
	pkgapi "github.com/taskforge/taskforge/pkg/api"
)

// Cli связывает команды с API клиентом и локальной сессией
type Cli struct {
	io       iocli.IO
	client   *api.Client
	sessions storage.SessionStorage
}

// New создает CLI поверх API клиента и хранилища сессии
func New(io iocli.IO, client *api.Client, sessions storage.SessionStorage) *Cli {
	return &Cli{
		io:       io,
		client:   client,
		sessions: sessions,
	}
}

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "whoami":
		return c.runWhoami(ctx)
	case "list":
		return c.runList(ctx, args)
	case "add":
		return c.runAdd(ctx, args)
	case "get":
		return c.runGet(ctx, args)
	case "update":
		return c.runUpdate(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "audit":
		return c.runAudit(ctx, args)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// rememberUser дописывает данные пользователя в локальную сессию
// Токены туда уже попали при захвате cookies ответа
func (c *Cli) rememberUser(ctx context.Context, user *pkgapi.UserPayload) error {
	sess, err := c.sessions.GetSession(ctx)
	if err != nil {
		sess = &storage.SessionData{}
	}

	sess.UserID = user.ID
	sess.Email = user.Email
	sess.Name = user.Name
	sess.Role = string(user.Role)

	if err := c.sessions.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func PrintUsage() {
	fmt.Println("TaskForge Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  taskforge [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version      Show version information")
	fmt.Println("  --server URL   Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH      Path to local database (default: ~/.taskforge.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register                Register new user")
	fmt.Println("  login                   Login to server")
	fmt.Println("  logout                  Logout and delete local session")
	fmt.Println("  whoami                  Show current user")
	fmt.Println("  list [flags]            List tasks (see 'list -h')")
	fmt.Println("  add [flags]             Add new task (see 'add -h')")
	fmt.Println("  get <id>                Show task details and activity")
	fmt.Println("  update <id> [flags]     Update task fields (see 'update -h')")
	fmt.Println("  delete <id>             Delete task")
	fmt.Println("  audit [flags]           Show audit log (admin only)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  taskforge register")
	fmt.Println("  taskforge login")
	fmt.Println("  taskforge add -title 'Buy milk' -priority HIGH")
	fmt.Println("  taskforge list -status TODO -search milk")
	fmt.Println("  taskforge update b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5 -status DONE")
	fmt.Println("  taskforge --server https://example.com list")
}
