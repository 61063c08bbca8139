package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"despesas/internal/cli"
	"despesas/internal/report/google"
)

const authTimeout = 5 * time.Minute

// googleAuthOptions configures the installed-app authorization flow.
type googleAuthOptions struct {
	clientJSON string
	clientFile string
	tokenFile  string
	port       string
}

func newGoogleAuthCommand() *cobra.Command {
	var opts googleAuthOptions

	cmd := &cobra.Command{
		Use:   "google-auth",
		Short: "Autoriza o acesso ao Google Sheets e salva o token OAuth",
		Long: "Abre um servidor local para receber o código de autorização do Google e grava o token\n" +
			"usado pelo destino de relatório sheets (GOOGLE_OAUTH_TOKEN_FILE).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			opts.fillFromEnv()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runGoogleAuth(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.clientFile, "client-file", "", "arquivo JSON do cliente OAuth (padrão: $GOOGLE_OAUTH_CLIENT_FILE)")
	cmd.Flags().StringVar(&opts.tokenFile, "token-file", "", "onde salvar o token (padrão: $GOOGLE_OAUTH_TOKEN_FILE ou token.json)")
	cmd.Flags().StringVar(&opts.port, "port", "", "porta do callback local (padrão: $OAUTH_REDIRECT_PORT ou 8085)")
	return cmd
}

func (o *googleAuthOptions) fillFromEnv() {
	o.clientJSON = os.Getenv("GOOGLE_OAUTH_CLIENT_JSON")
	if o.clientFile == "" {
		o.clientFile = os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")
	}
	if o.tokenFile == "" {
		o.tokenFile = os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")
	}
	if o.tokenFile == "" {
		o.tokenFile = "token.json"
	}
	if o.port == "" {
		o.port = os.Getenv("OAUTH_REDIRECT_PORT")
	}
	if o.port == "" {
		o.port = "8085"
	}
}

func runGoogleAuth(ctx context.Context, cmd *cobra.Command, opts googleAuthOptions) error {
	clientJSON, err := google.ReadOAuthClient(opts.clientJSON, opts.clientFile)
	if err != nil {
		return err
	}
	// The client must list this URI among its authorized redirect URIs.
	cfg, err := google.OAuthConfig(clientJSON, "http://localhost:"+opts.port+"/callback")
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "localhost:"+opts.port)
	if err != nil {
		return fmt.Errorf("listen for oauth callback: %w", err)
	}
	codes := make(chan string, 1)
	srv := &http.Server{Handler: callbackHandler(codes), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Close() }()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Abra este endereço para autorizar:"))
	fmt.Fprintln(out, cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	select {
	case code = <-codes:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.New("authorization timed out")
		}
		return errors.New("interrupted")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	if err := google.SaveToken(opts.tokenFile, tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Token salvo em"), valueStyle.Render(opts.tokenFile))
	return nil
}

// callbackHandler forwards the first authorization code to codes.
func callbackHandler(codes chan<- string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Pode fechar esta janela e voltar ao terminal.")
		select {
		case codes <- code:
		default:
		}
	})
	return mux
}
