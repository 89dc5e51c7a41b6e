// Package main is the entry point for the revise application.
// This file contains the topic subcommands: add, edit, delete, done, move,
// list, show, day, events and stats.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"revise/internal/calendar"
	"revise/internal/history"
	"revise/internal/schedule"
	"revise/internal/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add NAME SUBJECT",
	Short: "Add a topic and schedule its nine reviews",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		t, err := store.AddTopic(args[0], args[1])
		if err != nil {
			return err
		}
		printStatus("✓", fmt.Sprintf("Added %q (%s), next review %s", t.Name, t.Subject,
			t.Reviews[1].Format(dateLayout)), color.FgGreen)
		return nil
	},
}

var (
	editName    string
	editSubject string
	editNotes   string
)

var editCmd = &cobra.Command{
	Use:   "edit TOPIC",
	Short: "Change a topic's name, subject or notes",
	Long: `Change a topic's name, subject or notes. Flags that are not given keep
their current value; pass --notes "" to clear the notes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		t, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		name, subject, notes := t.Name, t.Subject, t.Notes
		if cmd.Flags().Changed("name") {
			name = editName
		}
		if cmd.Flags().Changed("subject") {
			subject = editSubject
		}
		if cmd.Flags().Changed("notes") {
			notes = editNotes
		}
		c := storage.EditCmd{ID: t.ID, Name: name, Subject: subject, Notes: notes}
		if err := c.Apply(store); err != nil {
			return err
		}
		printStatus("✓", c.Describe(), color.FgGreen)
		return nil
	},
}

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete TOPIC",
	Aliases: []string{"rm"},
	Short:   "Delete a topic and its reviews",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		t, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		if cfg.UX.ConfirmDeletions && !deleteYes && !confirm(fmt.Sprintf("Delete %q (%s)?", t.Name, t.Subject)) {
			fmt.Println("Canceled.")
			return nil
		}
		c := storage.DeleteCmd{ID: t.ID, Name: t.Name}
		if err := c.Apply(store); err != nil {
			return err
		}
		printStatus("✓", c.Describe(), color.FgGreen)
		return nil
	},
}

// confirm asks a yes/no question on stdin; anything but y or yes is no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

var doneUndo bool

var doneCmd = &cobra.Command{
	Use:   "done TOPIC [REVIEW]",
	Short: "Mark a review done",
	Long: `Mark a review done. Without REVIEW (1-9) the review due today is used.
With --undo the review is reopened instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		t, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		review := t.DueTodayIndex(store.Now())
		if len(args) == 2 {
			if review, err = parseReview(args[1]); err != nil {
				return err
			}
		} else if review < 0 {
			return fmt.Errorf("no review of %q is due today; name one with 'revise done %s REVIEW'", t.Name, args[0])
		}

		c := storage.CompleteCmd{ID: t.ID, Review: review, Done: !doneUndo, Name: t.Name}
		if err := c.Apply(store); err != nil {
			return err
		}
		printStatus("✓", c.Describe(), color.FgGreen)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move TOPIC REVIEW DATE",
	Short: "Move one review to another day",
	Long: `Move one review (1-9) to another day, keeping its time of day. DATE is
YYYY-MM-DD, today, tomorrow or yesterday.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		t, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		review, err := parseReview(args[1])
		if err != nil {
			return err
		}
		day, err := parseDay(args[2], store.Now())
		if err != nil {
			return err
		}

		mover := calendar.NewMover(store, history.NewManager(store))
		e, moved, err := mover.MoveTo(&calendar.Ref{TopicID: t.ID, ReviewIndex: review}, day)
		if err != nil {
			return err
		}
		if !moved {
			printStatus("•", fmt.Sprintf("Review %d of %q is already on %s", review+1, t.Name, day.Format(dateLayout)), color.FgYellow)
			return nil
		}
		printStatus("✓", "Moved "+e.Describe(), color.FgGreen)
		return nil
	},
}

var (
	listStatus  string
	listSubject string
	listSearch  string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List topics with their status",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, ok := storage.ParseStatus(listStatus)
		if !ok {
			return fmt.Errorf("invalid status %q: use all, pending, still or done", listStatus)
		}

		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		views, err := store.Query(storage.Filter{Status: status, Subject: listSubject, Search: listSearch})
		if err != nil {
			return err
		}
		if len(views) == 0 {
			fmt.Println("No topics match.")
			fmt.Println("Run 'revise add NAME SUBJECT' to add one.")
			return nil
		}

		now := store.Now()
		for _, v := range views {
			next := "-"
			if i := nextOpenReview(v.Topic, now); i >= 0 {
				next = v.Topic.Reviews[i].In(now.Location()).Format(dateLayout)
			}
			fmt.Printf("%3d  %s  %s  %s  %s  %s\n",
				v.Position,
				statusText(v.Status),
				padRight(v.Topic.Name, 32),
				color.CyanString(padRight(v.Topic.Subject, 16)),
				next,
				color.HiBlackString(shortID(v.Topic.ID)),
			)
		}
		return nil
	},
}

// nextOpenReview is the first incomplete review on or after today, or -1.
func nextOpenReview(t storage.Topic, now time.Time) int {
	today := schedule.StartOfDay(now)
	for i, r := range t.Reviews {
		if !t.IsCompleted(i) && !r.In(now.Location()).Before(today) {
			return i
		}
	}
	return -1
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var showCmd = &cobra.Command{
	Use:   "show TOPIC",
	Short: "Show a topic's full review schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		t, err := store.Resolve(args[0])
		if err != nil {
			return err
		}
		now := store.Now()

		bold := color.New(color.Bold)
		bold.Printf("%s\n", t.Name)
		fmt.Printf("Subject: %s\n", color.CyanString(t.Subject))
		fmt.Printf("Status:  %s\n", statusText(storage.Classify(t, now)))
		fmt.Printf("ID:      %s\n", t.ID)
		if t.Notes != "" {
			fmt.Printf("Notes:   %s\n", t.Notes)
		}
		fmt.Println()
		for i, r := range t.Reviews {
			when := r.In(now.Location())
			line := fmt.Sprintf("%s %d  %-9s %s", reviewMark(t.IsCompleted(i)), i+1, schedule.Label(i), when.Format("Mon 2006-01-02"))
			if schedule.SameDay(r, now) {
				line += color.YellowString("  today")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var dayNext int

var dayCmd = &cobra.Command{
	Use:   "day [DATE]",
	Short: "List the reviews falling on a day",
	Long: `List the reviews falling on a day (default today). With --next N, list the
open reviews of the next N days instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		topics, err := store.Topics()
		if err != nil {
			return err
		}
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		day, err := parseDay(arg, store.Now())
		if err != nil {
			return err
		}

		if dayNext > 0 {
			entries := calendar.Upcoming(topics, day, day.AddDate(0, 0, dayNext-1))
			if len(entries) == 0 {
				fmt.Printf("Nothing open in the next %s.\n", plural(dayNext, "day"))
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %s (%s), %s\n", e.Date.In(day.Location()).Format("Mon 2006-01-02"),
					e.TopicName, color.CyanString(e.Subject), schedule.Label(e.ReviewIndex))
			}
			return nil
		}

		entries := calendar.OnDay(topics, day)
		fmt.Println(color.New(color.Bold).Sprint(day.Format("Monday, January 2, 2006")))
		if len(entries) == 0 {
			fmt.Println("No reviews on this day.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s %s (%s), %s\n", reviewMark(e.Completed), e.TopicName, color.CyanString(e.Subject), schedule.Label(e.ReviewIndex))
		}
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print every review as a calendar event (JSON)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		topics, err := store.Topics()
		if err != nil {
			return err
		}
		events := calendar.Events(topics)
		if events == nil {
			events = []calendar.Event{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count reviews due today, overdue and completed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Due today:  %s\n", color.YellowString("%d", st.DueToday))
		fmt.Printf("Overdue:    %s\n", color.RedString("%d", st.StillPending))
		fmt.Printf("Completed:  %s\n", color.GreenString("%d", st.Completed))
		fmt.Printf("Topics:     %d\n", st.Topics)
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editName, "name", "", "new name")
	editCmd.Flags().StringVar(&editSubject, "subject", "", "new subject")
	editCmd.Flags().StringVar(&editNotes, "notes", "", "new notes")

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")

	doneCmd.Flags().BoolVar(&doneUndo, "undo", false, "reopen the review instead")

	listCmd.Flags().StringVarP(&listStatus, "status", "s", "all", "filter by status: all, pending, still or done")
	listCmd.Flags().StringVarP(&listSubject, "subject", "S", "all", "filter by subject")
	listCmd.Flags().StringVarP(&listSearch, "search", "q", "", "filter by text in name or subject")

	dayCmd.Flags().IntVarP(&dayNext, "next", "n", 0, "list open reviews of the next N days")
}
