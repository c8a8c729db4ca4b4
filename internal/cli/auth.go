package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/3003mgf/harvoffe/internal/hash"
	"github.com/3003mgf/harvoffe/internal/logging"
	"github.com/3003mgf/harvoffe/internal/mailer"
)

// register runs the "-r" account creation flow.
func (a *App) register(ctx context.Context) {
	if _, err := a.Sessions.Current(); err == nil {
		fmt.Fprintln(a.Out, Colored("You can't initiate a new registration process while you have an active session.\nAlso, if you already have an account, please do not create another just to obtain more balance.", "alert"))
		return
	}

	first, ok := a.promptName("First ('-e' to exit): ")
	if !ok {
		fmt.Fprintln(a.Out, Colored("Account creation cancelled", "error"))
		return
	}
	last, ok := a.promptName("Last ('-e' to exit): ")
	if !ok {
		fmt.Fprintln(a.Out, Colored("Account creation cancelled", "error"))
		return
	}
	email, ok := a.promptEmail(ctx)
	if !ok {
		fmt.Fprintln(a.Out, Colored("Account creation cancelled", "error"))
		return
	}
	password, ok := a.promptPassword()
	if !ok {
		fmt.Fprintln(a.Out, Colored("Account creation cancelled", "error"))
		return
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		a.internalError(ctx, "hash password", err)
		return
	}

	if _, err := a.Ledger.Register(TitleCase(first), TitleCase(last), email, hashed); err != nil {
		a.internalError(ctx, "create user", err)
		return
	}
	fmt.Fprintln(a.Out, Colored("\nYour user has been successfully created!\n", "success"))
}

func (a *App) promptName(label string) (string, bool) {
	for {
		name, ok := a.prompt(label)
		if !ok || name == "-e" || name == "--exit" {
			return "", false
		}
		if name == "" {
			fmt.Fprintln(a.Out, Colored("Name cannot be empty.", "error"))
			continue
		}
		if !ValidName(name) {
			fmt.Fprintln(a.Out, Colored("Invalid name. Please use letters only.", "error"))
			continue
		}
		return name, true
	}
}

// promptEmail validates the format, rejects emails already on file and
// runs the verification-code exchange when mail is configured.
func (a *App) promptEmail(ctx context.Context) (string, bool) {
	log := logging.FromContext(ctx)

	for {
		email, ok := a.prompt("Email ('-e' to exit): ")
		if !ok || email == "-e" || email == "--exit" {
			return "", false
		}
		if !ValidEmail(email) {
			fmt.Fprintln(a.Out, Colored("Invalid email format!", "error"))
			continue
		}

		used, err := a.Ledger.EmailInUse(email)
		if err != nil {
			a.internalError(ctx, "check email", err)
			continue
		}
		if used {
			fmt.Fprintln(a.Out, Colored("It seems you already have an account! (Email is already in use)", "error"))
			continue
		}

		if !a.Mail.Configured() {
			log.Warn("smtp not configured, skipping email verification", "email", email)
			return email, true
		}

		code, err := mailer.SendVerificationCode(a.Mail, email)
		if err != nil {
			log.Error("verification code send failed", "error", err)
			fmt.Fprintln(a.Out, Colored("Internal error: Couldn't send code to user's email.", "error"))
			continue
		}
		fmt.Fprintln(a.Out, Colored("A verification code has been sent to your email, please retrieve it and type it below!", "alert"))
		if !a.verifyCode(code) {
			fmt.Fprintln(a.Out, Colored("Your email couldn't be verified :(", "error"))
			continue
		}
		return email, true
	}
}

// verifyCode gives the user two attempts at the emailed code.
func (a *App) verifyCode(code string) bool {
	for tries := 2; tries > 0; tries-- {
		input, ok := a.prompt("Verification Code: ")
		if !ok {
			return false
		}
		if input == code {
			fmt.Fprintln(a.Out, Colored("Your email has been verified!", "success"))
			return true
		}
		if tries == 2 {
			fmt.Fprintln(a.Out, Colored("Incorrect code. You have one more attempt available.", "error"))
		}
	}
	return false
}

func (a *App) promptPassword() (string, bool) {
	for {
		password, ok := a.prompt("Password ('-e' to exit): ")
		if !ok || password == "-e" || password == "--exit" {
			return "", false
		}
		if ValidPassword(password) {
			return password, true
		}
		fmt.Fprintln(a.Out, Colored("Invalid password. Expected:\n", "error"))
		for i, rule := range PasswordGuide {
			fmt.Fprintf(a.Out, "%d. %s\n", i+1, rule)
		}
	}
}

// authenticate runs the "-auth" login flow and opens a session.
func (a *App) authenticate(ctx context.Context) {
	log := logging.FromContext(ctx)

	for {
		email, ok := a.prompt("Email ('-e' to exit): ")
		if !ok || email == "-e" || email == "--exit" {
			return
		}

		user, err := a.Ledger.FindByEmail(email)
		if err != nil {
			fmt.Fprintln(a.Out, Colored("Could not find any user associated to your email", "error"))
			continue
		}

		for {
			password, ok := a.prompt("Password ('-e' to exit): ")
			if !ok || password == "-e" || password == "--exit" {
				return
			}
			if !hash.CheckPassword(user.PasswordHash, password) {
				fmt.Fprintln(a.Out, Colored("Invalid password.", "error"))
				continue
			}

			if err := a.Sessions.Create(user); err != nil {
				a.internalError(ctx, "create session", err)
				return
			}
			log.Info("session created", "card_id", user.CardID)
			fmt.Fprintln(a.Out, Colored(fmt.Sprintf("Hello %s! You authenticated successfully, now you're available to add items to your cart and place an order!", user.First), "success"))
			return
		}
	}
}

// disconnect closes the session after confirmation.
func (a *App) disconnect() {
	if _, err := a.Sessions.Current(); err != nil {
		return
	}
	confirm, ok := a.prompt("Close your current session? (Y/N) ")
	if !ok || strings.ToUpper(confirm) != "Y" {
		return
	}
	if err := a.Sessions.Close(); err != nil {
		fmt.Fprintln(a.Out, Colored(err.Error(), "error"))
		return
	}
	fmt.Fprintln(a.Out, Colored("\nSession closed!\n", "success"))
}
