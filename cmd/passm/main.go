package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Hussein-Mazeh/passm/internal/config"
	"github.com/Hussein-Mazeh/passm/internal/service"
	"github.com/Hussein-Mazeh/passm/internal/vault"
	"github.com/Hussein-Mazeh/passm/store"
)

const cliVersion = "1.0.0"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := config.LoadDotEnv(""); err != nil {
		handleError(err)
	}

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "version":
		fmt.Println(cliVersion)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "init":
		err = runInit(args)
	case "add":
		err = runAdd(args)
	case "get":
		err = runGet(args)
	case "list":
		err = runList(args)
	case "update":
		err = runUpdate(args)
	case "delete":
		err = runDelete(args)
	case "migrate":
		err = runMigrate(args)
	default:
		printUsage()
		os.Exit(1)
	}
	handleError(err)
}

func handleError(err error) {
	if err == nil {
		return
	}

	if msg, ok := userMessage(err); ok {
		fmt.Fprintln(os.Stderr, errorStyle.Render(msg))
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("unexpected error: %v", err)))
	os.Exit(2)
}

// userMessage maps expected failures to the message shown to the user.
func userMessage(err error) (string, bool) {
	var uerr userError
	var derr *vault.DecryptionError
	switch {
	case errors.As(err, &uerr):
		return uerr.Error(), true
	case errors.Is(err, store.ErrNotInitialized):
		return store.ErrNotInitialized.Error(), true
	case errors.Is(err, service.ErrAlreadyInitialized):
		return "A vault already exists at this location.", true
	case errors.Is(err, service.ErrInvalidMasterPassword):
		return "Invalid master password.", true
	case errors.Is(err, service.ErrNotFound):
		return "No entry found for service: " + strings.TrimSuffix(err.Error(), ": "+service.ErrNotFound.Error()), true
	case errors.As(err, &derr):
		return "Error decrypting password: the stored entry could not be authenticated or decoded.", true
	case errors.Is(err, vault.ErrSaltReuse):
		return "This username cannot be used with the configured HASH_SALT.", true
	}
	return "", false
}

// newFlagSet returns a silent flag set with the shared --verbose flag bound.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	verbose := fs.Bool("verbose", false, "log vault operations to stderr")
	return fs, verbose
}

// parseWithService accepts the service name before or after the flags.
func parseWithService(fs *flag.FlagSet, args []string) (string, error) {
	var svc string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		svc, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", userError{msg: "invalid arguments"}
	}
	rest := fs.Args()
	if svc == "" && len(rest) > 0 {
		svc, rest = rest[0], rest[1:]
	}
	if len(rest) != 0 {
		return "", userError{msg: "unexpected positional arguments"}
	}
	if svc == "" {
		return "", userError{msg: "missing required argument: <service>"}
	}
	return svc, nil
}

func parseNoArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}
	return nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return cfg, userError{msg: err.Error()}
	}
	return cfg, nil
}

func serviceFor(cfg config.Config, verbose bool) (*service.Service, func() error, error) {
	var opts []service.Option
	if verbose || cfg.Debug {
		opts = append(opts, service.WithLogger(log.New(os.Stderr, "passm: ", 0)))
	}
	return service.FromConfig(cfg, opts...)
}

func openService(verbose bool) (*service.Service, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return serviceFor(cfg, verbose)
}

func runInit(args []string) error {
	fs, verbose := newFlagSet("init")
	strict := fs.Bool("strict", false, "require a strong master password")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *strict {
		cfg.Policy.Strict = true
	}
	svc, closeFn, err := serviceFor(cfg, *verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	exists, err := svc.Initialized()
	if err != nil {
		return err
	}
	if exists {
		return service.ErrAlreadyInitialized
	}

	fmt.Println(promptStyle.Render("Create a master password: "))
	pw, err := promptNewSecret("Master password: ", "Confirm master password: ")
	if err != nil {
		return err
	}
	defer zeroBytes(pw)

	if err := svc.Init(context.Background(), string(pw)); err != nil {
		if errors.Is(err, service.ErrAlreadyInitialized) {
			return err
		}
		return userError{msg: err.Error()}
	}

	fmt.Println(successStyle.Render("Password manager initialized."))
	return nil
}

func runAdd(args []string) error {
	fs, verbose := newFlagSet("add")
	username := fs.String("u", "", "username for the service")
	fs.StringVar(username, "username", "", "username for the service")
	password := fs.String("p", "", "password for the service")
	fs.StringVar(password, "password", "", "password for the service")

	name, err := parseWithService(fs, args)
	if err != nil {
		return err
	}

	svc, closeFn, err := openService(*verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	user := *username
	if user == "" {
		if user, err = promptLine("Enter the username: "); err != nil {
			return fmt.Errorf("read username: %w", err)
		}
	}

	secret := []byte(*password)
	if len(secret) == 0 {
		if secret, err = promptNewSecret("Enter the password: ", "Confirm the password: "); err != nil {
			return err
		}
	}
	defer zeroBytes(secret)

	masterPw, err := promptMaster()
	if err != nil {
		return err
	}
	defer zeroBytes(masterPw)

	if err := svc.Add(name, user, string(secret), string(masterPw)); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("Password entry added successfully."))
	return nil
}

func runGet(args []string) error {
	fs, verbose := newFlagSet("get")
	copyPw := fs.Bool("copy", false, "copy the password to the clipboard instead of printing it")

	name, err := parseWithService(fs, args)
	if err != nil {
		return err
	}

	svc, closeFn, err := openService(*verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	masterPw, err := promptMaster()
	if err != nil {
		return err
	}
	defer zeroBytes(masterPw)

	cred, err := svc.Get(name, string(masterPw))
	if err != nil {
		return err
	}

	fmt.Printf("Username: %s\n", successStyle.Render(cred.Username))
	if *copyPw {
		if err := clipboard.WriteAll(cred.Password); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Println(successStyle.Render("Password copied to clipboard."))
		return nil
	}
	fmt.Printf("Password: %s\n", successStyle.Render(cred.Password))
	return nil
}

func runList(args []string) error {
	fs, verbose := newFlagSet("list")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}

	svc, closeFn, err := openService(*verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	items, err := svc.List()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println(warnStyle.Render("No entries found."))
		return nil
	}
	for _, it := range items {
		fmt.Printf("Service: %s, Username: %s\n", successStyle.Render(it.Service), promptStyle.Render(it.Username))
	}
	return nil
}

func runUpdate(args []string) error {
	fs, verbose := newFlagSet("update")
	username := fs.String("u", "", "new username")
	fs.StringVar(username, "username", "", "new username")
	password := fs.String("p", "", "new password")
	fs.StringVar(password, "password", "", "new password")

	name, err := parseWithService(fs, args)
	if err != nil {
		return err
	}

	var in service.UpdateInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "u", "username":
			in.Username = username
		case "p", "password":
			in.Password = password
		}
	})

	svc, closeFn, err := openService(*verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	masterPw, err := promptMaster()
	if err != nil {
		return err
	}
	defer zeroBytes(masterPw)

	if err := svc.Update(name, string(masterPw), in); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Entry for service '%s' updated successfully.", name)))
	return nil
}

func runDelete(args []string) error {
	fs, verbose := newFlagSet("delete")
	name, err := parseWithService(fs, args)
	if err != nil {
		return err
	}

	svc, closeFn, err := openService(*verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Println(promptStyle.Render("Enter your master password to confirm deletion: "))
	masterPw, err := promptMaster()
	if err != nil {
		return err
	}
	defer zeroBytes(masterPw)

	if err := svc.Delete(name, string(masterPw)); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Service '%s' deleted successfully.", name)))
	return nil
}

func runMigrate(args []string) error {
	fs, verbose := newFlagSet("migrate")
	var backend, dest string
	fs.StringVar(&backend, "backend", "", "destination backend (json or sqlite)")
	fs.StringVar(&dest, "dest", "", "destination path")
	if err := parseNoArgs(fs, args); err != nil {
		return err
	}
	if backend == "" || dest == "" {
		return userError{msg: "missing required flags: --backend and --dest"}
	}

	svc, closeFn, err := openService(*verbose)
	if err != nil {
		return err
	}
	defer closeFn()

	dst, closeDst, err := service.OpenStore(backend, dest)
	if err != nil {
		return userError{msg: err.Error()}
	}
	defer closeDst()

	if err := svc.Migrate(dst); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("Vault copied to %s (%s).", dest, backend)))
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: passm <command>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  init [--strict]")
	fmt.Fprintln(os.Stderr, "  add <service> [-u <username>] [-p <password>]")
	fmt.Fprintln(os.Stderr, "  get <service> [--copy]")
	fmt.Fprintln(os.Stderr, "  list")
	fmt.Fprintln(os.Stderr, "  update <service> [-u <username>] [-p <password>]")
	fmt.Fprintln(os.Stderr, "  delete <service>")
	fmt.Fprintln(os.Stderr, "  migrate --backend <json|sqlite> --dest <path>")
	fmt.Fprintln(os.Stderr, "  version")
	fmt.Fprintln(os.Stderr, "Every command accepts --verbose.")
	fmt.Fprintln(os.Stderr, "Environment: HASH_SALT, JSON_PATH, PASSM_BACKEND, PASSM_CONFIG, PASSM_DEBUG")
	fmt.Fprintln(os.Stderr, "Invocations against one vault must not run concurrently.")
}
