package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/config"
	"github.com/sagarc03/wally/database"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Manage wall comments",
	Long: `List, add and remove comments directly in the configured comment store.

Examples:
  # Show the first page of comments
  wally comments list

  # Dump everything as YAML
  wally comments list --all -o yaml

  # Add a comment, prompting for missing fields
  wally comments add --name alice

  # Remove a comment without confirmation
  wally comments remove -y 0b8e0c5e-3f5e-4a53-9a57-3c1e2a7c9a10`,
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comments, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runCommentsList,
}

var commentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a comment",
	Args:  cobra.NoArgs,
	RunE:  runCommentsAdd,
}

var commentsRemoveCmd = &cobra.Command{
	Use:     "remove <id>...",
	Aliases: []string{"rm"},
	Short:   "Remove comments by id",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runCommentsRemove,
}

var (
	commentsOutput string
	commentsQuiet  bool

	listLimit  int
	listCursor string
	listAll    bool

	addName    string
	addComment string

	removeYes bool
)

func init() {
	commentsCmd.PersistentFlags().StringVarP(&commentsOutput, "output", "o", "human", "output format: human, json, yaml")
	commentsCmd.PersistentFlags().BoolVarP(&commentsQuiet, "quiet", "q", false, "suppress non-essential output")

	commentsListCmd.Flags().IntVarP(&listLimit, "limit", "l", 100, "maximum comments per page (1-1000)")
	commentsListCmd.Flags().StringVar(&listCursor, "cursor", "", "continue from a previous page")
	commentsListCmd.Flags().BoolVarP(&listAll, "all", "A", false, "fetch every page")

	commentsAddCmd.Flags().StringVar(&addName, "name", "", "commenter name")
	commentsAddCmd.Flags().StringVar(&addComment, "comment", "", "comment text")

	commentsRemoveCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "do not ask for confirmation")

	commentsCmd.AddCommand(commentsListCmd, commentsAddCmd, commentsRemoveCmd)
	rootCmd.AddCommand(commentsCmd)
}

// openRepo connects to the configured store and checks its schema. The
// returned function closes the connection.
func openRepo(ctx context.Context) (wally.CommentRepo, func(), error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db.GetRepo(), func() { _ = db.Close() }, nil
}

func runCommentsList(cmd *cobra.Command, args []string) error {
	formatter, err := NewFormatter(commentsOutput, commentsQuiet)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	repo, closeDB, err := openRepo(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	q := wally.ListQuery{Limit: listLimit, Cursor: listCursor}
	if !listAll {
		result, err := repo.List(ctx, q)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		return formatter.FormatList(cmd.OutOrStdout(), result)
	}

	var all wally.ListResult
	for {
		page, err := repo.List(ctx, q)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		all.Items = append(all.Items, page.Items...)
		if page.NextCursor == "" {
			break
		}
		q.Cursor = page.NextCursor
	}
	return formatter.FormatList(cmd.OutOrStdout(), all)
}

func runCommentsAdd(cmd *cobra.Command, args []string) error {
	formatter, err := NewFormatter(commentsOutput, commentsQuiet)
	if err != nil {
		return err
	}

	name, text := addName, addComment
	if strings.TrimSpace(name) == "" {
		if name, err = promptField("Name", wally.MaxNameLength); err != nil {
			return handlePromptError(err)
		}
	}
	if strings.TrimSpace(text) == "" {
		if text, err = promptField("Comment", wally.MaxCommentLength); err != nil {
			return handlePromptError(err)
		}
	}

	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	if err := wally.ValidateComment(name, text); err != nil {
		return err
	}

	ctx := cmd.Context()
	repo, closeDB, err := openRepo(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	c, err := repo.Put(ctx, name, text)
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return formatter.FormatComment(cmd.OutOrStdout(), c)
}

func runCommentsRemove(cmd *cobra.Command, args []string) error {
	formatter, err := NewFormatter(commentsOutput, commentsQuiet)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(args))
	for _, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			return fmt.Errorf("invalid comment id %q: %w", a, err)
		}
		ids = append(ids, id)
	}

	if !removeYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Remove %d comment(s)", len(ids)),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil //nolint:nilerr // declining is not an error
		}
	}

	ctx := cmd.Context()
	repo, closeDB, err := openRepo(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	var failed int
	for _, id := range ids {
		if err := repo.Delete(ctx, id); err != nil {
			failed++
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s - %v\n", id, err)
			continue
		}
		if err := formatter.FormatDelete(cmd.OutOrStdout(), id.String()); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d comment(s) not removed", failed, len(ids))
	}
	return nil
}

func promptField(label string, maxLen int) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			input = strings.TrimSpace(input)
			if input == "" {
				return fmt.Errorf("%s is required", strings.ToLower(label))
			}
			if len([]rune(input)) > maxLen {
				return fmt.Errorf("%s is longer than %d characters", strings.ToLower(label), maxLen)
			}
			return nil
		},
	}
	return p.Run()
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Fprintln(os.Stderr, "\nCancelled.")
		os.Exit(130)
	}
	if errors.Is(err, promptui.ErrAbort) {
		return errors.New("cancelled")
	}
	return err
}
