package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"exam_exchange/internal/exchange"
	"exam_exchange/internal/model"
)

var current *app

var rootCmd = &cobra.Command{
	Use:           "exchange",
	Short:         "exchange manages exam date exchange adverts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

var (
	createEmail string
	createLink  string
	createDates []string
	datesMail   bool
	boardCode   string
	reactFrom   string
	reactMsg    string
	subjectInfo model.SubjectInfo
)

func init() {
	createCmd.Flags().StringVar(&createEmail, "email", "", "author's reply address")
	createCmd.Flags().StringVar(&createLink, "link", "", "catalog link of the offered exam date")
	createCmd.Flags().StringSliceVar(&createDates, "date", nil, "desired date (YYYY-MM-DD), repeatable")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("link")

	datesCmd.Flags().BoolVar(&datesMail, "mail", true, "send the management link to the author")

	boardCmd.Flags().StringVar(&boardCode, "subject", "", "only list adverts of this subject code")

	reactCmd.Flags().StringVar(&reactFrom, "from", "", "reply address of the interested student")
	reactCmd.Flags().StringVar(&reactMsg, "message", "", "message to the author")
	_ = reactCmd.MarkFlagRequired("from")
	_ = reactCmd.MarkFlagRequired("message")

	f := subjectPutCmd.Flags()
	f.StringVar(&subjectInfo.Title, "title", "", "English title")
	f.StringVar(&subjectInfo.TitleLocal, "title-local", "", "local title")
	f.StringVar(&subjectInfo.Language, "language", model.LocalLanguage, "teaching language")
	f.StringVar(&subjectInfo.Faculty, "faculty", "", "faculty code")
	f.StringVar(&subjectInfo.Department, "department", "", "department code")
	f.StringVar(&subjectInfo.Status, "status", model.SubjectTaught, "subject status")

	rootCmd.AddCommand(
		createCmd, datesCmd, showCmd, activateCmd, deactivateCmd, deleteCmd,
		boardCmd, counteroffersCmd, reactCmd, subjectsCmd, subjectPutCmd,
	)
}

var createCmd = &cobra.Command{
	Use:   "create --email <address> --link <catalog url> [--date YYYY-MM-DD]...",
	Short: "Creates an advert family from a catalog exam date.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dates, err := parseDates(createDates)
		if err != nil {
			return err
		}
		draft, err := current.svc.Create(cmd.Context(), exchange.CreateRequest{
			Email: createEmail,
			Link:  createLink,
			Dates: dates,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), FormatDraft(draft, current.svc.ManageURL(draft.Token)))
		return nil
	},
}

var datesCmd = &cobra.Command{
	Use:   "dates <token> <YYYY-MM-DD>...",
	Short: "Attaches desired dates to a family and lists it.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := model.ParseToken(args[0])
		if err != nil {
			return err
		}
		dates, err := parseDates(args[1:])
		if err != nil {
			return err
		}
		members, err := current.svc.SubmitDates(cmd.Context(), token, dates, datesMail)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), FormatMembers(members))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <token>",
	Short: "Shows a family.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := model.ParseToken(args[0])
		if err != nil {
			return err
		}
		fam, err := current.svc.View(cmd.Context(), token)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), FormatFamily(fam))
		return nil
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <token>",
	Short: "Lists a family on the board.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := model.ParseToken(args[0])
		if err != nil {
			return err
		}
		if err := current.svc.Activate(cmd.Context(), token); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Family activated.")
		return nil
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <token>",
	Short: "Hides a family from the board.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := model.ParseToken(args[0])
		if err != nil {
			return err
		}
		if err := current.svc.Deactivate(cmd.Context(), token); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Family deactivated.")
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <token>",
	Short: "Deletes a family.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := model.ParseToken(args[0])
		if err != nil {
			return err
		}
		n, err := current.svc.Delete(cmd.Context(), token)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d rows.\n", n)
		return nil
	},
}

var boardCmd = &cobra.Command{
	Use:   "board [--subject <code>]",
	Short: "Lists active adverts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		adverts, err := current.svc.Board(cmd.Context(), boardCode)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), FormatBoard(adverts))
		return nil
	},
}

var counteroffersCmd = &cobra.Command{
	Use:   "counteroffers <token>",
	Short: "Lists future dates the family's subjects offer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := model.ParseToken(args[0])
		if err != nil {
			return err
		}
		dates, err := current.svc.Counteroffers(cmd.Context(), token)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), FormatDates(dates))
		return nil
	},
}

var reactCmd = &cobra.Command{
	Use:   "react <advert id> --from <address> --message <text>",
	Short: "Replies to an advert on the board.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ParseIDArg(args[0])
		if err != nil {
			return err
		}
		delivered, err := current.svc.React(cmd.Context(), id, reactFrom, reactMsg)
		if err != nil {
			return err
		}
		if !delivered {
			fmt.Fprintln(cmd.OutOrStdout(), "Reply was not delivered.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Reply delivered. The advert is no longer listed.")
		return nil
	},
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects <query>",
	Short: "Searches taught subjects by title.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subjects, err := current.svc.SearchSubjects(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), FormatSubjects(subjects))
		return nil
	},
}

var subjectPutCmd = &cobra.Command{
	Use:   "subject-put <code> [flags]",
	Short: "Stores local metadata of a subject.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := subjectInfo
		info.Code = args[0]
		if err := current.svc.PutSubject(cmd.Context(), info); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject %s saved.\n", info.Code)
		return nil
	},
}
