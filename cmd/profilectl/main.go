package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lumenlabs/profilehub/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden by the release build via -ldflags "-X main.version=...".
var version = "dev"

// defaultCookieName mirrors the service's session_name config default.
const defaultCookieName = "profilehub-session"

var (
	serverURL  string
	cookieVal  string
	cookieName string
	cfgFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "profilectl",
	Short: "ProfileHub command-line client",
	Long: `profilectl talks to a ProfileHub service over its JSON API.

Sign-in happens in a browser (Google OAuth); run 'profilectl login' for the
URL, then pass the session cookie with --cookie or put it in the config file.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.profilectl")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("PROFILECTL")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}
		if cookieVal == "" {
			cookieVal = viper.GetString("cookie")
		}
		if cookieName == "" {
			cookieName = viper.GetString("cookie_name")
		}
		if cookieName == "" {
			cookieName = defaultCookieName
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.profilectl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "ProfileHub service URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&cookieVal, "cookie", "", "session cookie value obtained after browser sign-in")
	rootCmd.PersistentFlags().StringVar(&cookieName, "cookie-name", "", "session cookie name (default "+defaultCookieName+")")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(usernameCmd)
	rootCmd.AddCommand(togglePublicCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(versionCmd)
}

func newAPI() (*client.API, error) {
	api, err := client.NewAPI(client.Config{BaseURL: serverURL, Timeout: 15 * time.Second})
	if err != nil {
		return nil, err
	}
	if cookieVal != "" {
		api.SetSessionCookie(cookieName, cookieVal)
	}
	return api, nil
}

// requireSession refreshes once and fails the command when the cookie is
// missing or stale, mirroring how the web client gates protected routes.
func requireSession(ctx context.Context, api *client.API) (*client.Session, error) {
	session := client.NewSession(api)
	state := session.Refresh(ctx)
	if d := client.Decide(state); d.Action != client.RenderProtected {
		return nil, fmt.Errorf("not signed in; run 'profilectl login' and pass the session cookie with --cookie")
	}
	return session, nil
}

// ── login ────────────────────────────────────────────────────────────────────

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Print the browser sign-in URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		fmt.Println("Open this URL in a browser and complete the Google sign-in:")
		fmt.Printf("\n  %s\n\n", api.GoogleLoginURL())
		fmt.Printf("Then copy the %q cookie from the browser and pass it with --cookie,\n", cookieName)
		fmt.Println("or store it in ~/.profilectl/config.yaml as 'cookie: <value>'.")
		return nil
	},
}

// ── whoami ───────────────────────────────────────────────────────────────────

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and profile completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		session, err := requireSession(cmd.Context(), api)
		if err != nil {
			return err
		}
		u, _ := session.User()

		visibility := "private"
		if u.IsPublic {
			visibility = "public"
		}
		fmt.Printf("Name:       %s\n", u.Name)
		fmt.Printf("Username:   %s\n", u.Username)
		fmt.Printf("Email:      %s\n", u.Email)
		fmt.Printf("Visibility: %s\n", visibility)
		fmt.Printf("Logins:     %d\n", u.LoginCount)

		c := client.ComputeCompletion(*u)
		fmt.Printf("Completion: %d%%\n", c.Percent)
		if len(c.Missing) > 0 {
			fmt.Printf("Missing:    %s\n", strings.Join(c.Missing, ", "))
		}
		return nil
	},
}

// ── update ───────────────────────────────────────────────────────────────────

var (
	updName     string
	updBio      string
	updPhone    string
	updLocation string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update applies a partial profile edit. Only flags you pass are sent;
an explicitly empty value clears the field:

  profilectl update --bio "Plays the theremin" --phone ""`,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		session, err := requireSession(cmd.Context(), api)
		if err != nil {
			return err
		}

		var edit client.ProfileEdit
		if cmd.Flags().Changed("name") {
			edit.Name = &updName
		}
		if cmd.Flags().Changed("bio") {
			edit.Bio = &updBio
		}
		if cmd.Flags().Changed("phone") {
			edit.Phone = &updPhone
		}
		if cmd.Flags().Changed("location") {
			edit.Location = &updLocation
		}
		if edit.Name == nil && edit.Bio == nil && edit.Phone == nil && edit.Location == nil {
			return fmt.Errorf("nothing to update; pass at least one of --name, --bio, --phone, --location")
		}

		rec := client.NewReconciler(api, session)
		if err := rec.UpdateProfile(cmd.Context(), edit); err != nil {
			return err
		}

		u, _ := session.User()
		c := client.ComputeCompletion(*u)
		fmt.Printf("✓ Profile updated (completion %d%%)\n", c.Percent)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updName, "name", "", "display name")
	updateCmd.Flags().StringVar(&updBio, "bio", "", "short bio")
	updateCmd.Flags().StringVar(&updPhone, "phone", "", "phone number")
	updateCmd.Flags().StringVar(&updLocation, "location", "", "location")
}

// ── username ─────────────────────────────────────────────────────────────────

var usernameCmd = &cobra.Command{
	Use:   "username <new-username>",
	Short: "Change the account's username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		session, err := requireSession(cmd.Context(), api)
		if err != nil {
			return err
		}

		rec := client.NewReconciler(api, session)
		if err := rec.UpdateUsername(cmd.Context(), args[0]); err != nil {
			return err
		}

		u, _ := session.User()
		fmt.Printf("✓ Username is now %q\n", u.Username)
		return nil
	},
}

// ── toggle-public ────────────────────────────────────────────────────────────

var togglePublicCmd = &cobra.Command{
	Use:   "toggle-public",
	Short: "Flip the profile between public and private",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		session, err := requireSession(cmd.Context(), api)
		if err != nil {
			return err
		}

		rec := client.NewReconciler(api, session)
		if err := rec.TogglePublicVisibility(cmd.Context()); err != nil {
			return err
		}

		u, _ := session.User()
		if u.IsPublic {
			fmt.Printf("✓ Profile is now public: anyone can view /profile/%s\n", u.Username)
		} else {
			fmt.Println("✓ Profile is now private")
		}
		return nil
	},
}

// ── stats ────────────────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard aggregate",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		if _, err := requireSession(cmd.Context(), api); err != nil {
			return err
		}

		s, err := api.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Profile views:      %d\n", s.ProfileViews)
		fmt.Printf("Profile completion: %d%%\n", s.ProfileCompletion)
		if len(s.RecentActivity) > 0 {
			fmt.Println("\nRecent activity:")
			for _, e := range s.RecentActivity {
				fmt.Printf("  %s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Action)
			}
		}
		return nil
	},
}

// ── activity ─────────────────────────────────────────────────────────────────

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the account's activity timeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		if _, err := requireSession(cmd.Context(), api); err != nil {
			return err
		}

		entries, err := api.Activity(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No activity yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tACTION")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Action)
		}
		return w.Flush()
	},
}

// ── view ─────────────────────────────────────────────────────────────────────

var viewCmd = &cobra.Command{
	Use:   "view <username>",
	Short: "View another account's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}

		resolver := client.NewResolver(api)
		out := resolver.Resolve(cmd.Context(), args[0])

		switch out.Kind {
		case client.NotFound:
			return fmt.Errorf("no profile named %q", out.Username)
		case client.PrivateBlocked:
			fmt.Printf("@%s keeps their profile private.\n", out.Username)
			return nil
		case client.TransientError:
			return fmt.Errorf("could not load profile %q; try again", out.Username)
		}

		p := out.Profile
		fmt.Printf("@%s\n", p.Username)
		if p.Name != "" {
			fmt.Printf("Name:     %s\n", p.Name)
		}
		if p.Bio != "" {
			fmt.Printf("Bio:      %s\n", p.Bio)
		}
		if p.Location != "" {
			fmt.Printf("Location: %s\n", p.Location)
		}
		if p.Skills != "" {
			fmt.Printf("Skills:   %s\n", p.Skills)
		}
		return nil
	},
}

// ── delete ───────────────────────────────────────────────────────────────────

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI()
		if err != nil {
			return err
		}
		session, err := requireSession(cmd.Context(), api)
		if err != nil {
			return err
		}
		u, _ := session.User()

		if !deleteForce {
			fmt.Printf("This permanently deletes the account %q and all its data.\n", u.Username)
			fmt.Print("This action cannot be undone. Continue? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		rec := client.NewReconciler(api, session)
		if err := rec.DeleteAccount(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("✓ Account permanently deleted")
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "skip confirmation prompt")
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the profilectl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("profilectl %s\n", version)
	},
}
