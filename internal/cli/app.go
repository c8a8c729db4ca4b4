package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"

	"github.com/3003mgf/harvoffe/internal/account"
	"github.com/3003mgf/harvoffe/internal/cart"
	"github.com/3003mgf/harvoffe/internal/logging"
	"github.com/3003mgf/harvoffe/internal/mailer"
	"github.com/3003mgf/harvoffe/internal/menu"
	"github.com/3003mgf/harvoffe/internal/models"
	"github.com/3003mgf/harvoffe/internal/order"
	"github.com/3003mgf/harvoffe/internal/session"
)

// App is the interactive command loop with every collaborator
// injected, so flows stay testable against in-memory backends.
type App struct {
	Menu     *menu.Catalog
	Carts    *cart.Engine
	Orders   *order.Service
	Ledger   *account.Ledger
	Sessions *session.Manager
	Mail     mailer.Sender
	Out      io.Writer

	in *bufio.Scanner
}

func (a *App) SetInput(r io.Reader) {
	a.in = bufio.NewScanner(r)
}

// Run prints the banner and dispatches commands until EOF.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.Out, figure.NewFigure("Harvoffe", "", true).String())
	fmt.Fprintln(a.Out, "This is Harvoffe, the coffee shop of Harvard. Order your favorite coffee so you can be awake in class!")
	fmt.Fprintln(a.Out)
	if _, err := a.Sessions.Current(); err == nil {
		fmt.Fprintf(a.Out, "You're: %s\n\n", Colored("Online", "success"))
	} else {
		fmt.Fprintf(a.Out, "You're: %s\n\n", Colored("Disconnected", "alert"))
	}
	fmt.Fprintf(a.Out, "Available Shortcuts:\n\n%s\n", RenderShortcuts())

	for {
		input, ok := a.prompt("Type Here (CTRL + C to exit): ")
		if !ok {
			return nil
		}
		a.dispatch(ctx, input)
	}
}

func (a *App) dispatch(ctx context.Context, input string) {
	switch input {
	case "-r", "--register":
		a.register(ctx)
	case "-m", "--menu":
		fmt.Fprintln(a.Out, RenderMenu(a.Menu.Entries()))
	case "-o", "--order":
		a.takeOrder(ctx)
	case "-auth", "--authenticate":
		a.authenticate(ctx)
	case "-dis", "--disconnect":
		a.disconnect()
	case "-c", "--cart":
		a.openCart(ctx)
	case "-sh", "--shortcuts":
		fmt.Fprintf(a.Out, "\nAvailable Shortcuts:\n\n%s\n", RenderShortcuts())
	case "-oh", "--orderhistory":
		a.orderHistory()
	case "":
	default:
		if id, ok := ParseTicketID(input); ok {
			a.requestTicket(ctx, id)
			return
		}
		fmt.Fprintln(a.Out, Colored("Unknown command. Type '-sh' to list the available shortcuts.", "error"))
	}
}

func (a *App) prompt(label string) (string, bool) {
	fmt.Fprint(a.Out, label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// currentSession returns the active session or alerts the user.
func (a *App) currentSession() *models.Session {
	sess, err := a.Sessions.Current()
	if err != nil {
		fmt.Fprintln(a.Out, Colored("Please authenticate (-auth) in order to continue.", "alert"))
		return nil
	}
	return sess
}

// takeOrder runs the "-o" prompt loop: COFFEE [-q N] against the menu.
func (a *App) takeOrder(ctx context.Context) {
	sess := a.currentSession()
	if sess == nil {
		return
	}

	fmt.Fprintln(a.Out, Colored("\n*** Place Order ***\n\nTips to place your order:\n1. You can add items to your order with this command 'COFFEE [-q \\d]'\n2. To open your cart and modify it, just type '-c|--cart'\n", "gray"))

	crt, err := a.Carts.Load(sess.CardID)
	if err != nil {
		a.internalError(ctx, "load cart", err)
		return
	}

	for {
		input, ok := a.prompt("Add to Order ('-e' to exit): ")
		if !ok || input == "-e" || input == "--exit" {
			break
		}

		line, err := ParseOrderLine(input)
		if err != nil {
			fmt.Fprintln(a.Out, Colored(err.Error(), "error"))
			continue
		}

		entry, found := a.Menu.Lookup(line.Coffee)
		if !found {
			fmt.Fprintln(a.Out, Colored("Could not find that Coffee in our menu.", "error"))
			continue
		}

		if err := a.Carts.AddQuantity(crt, entry.Coffee, entry.Price, line.Quantity); err != nil {
			fmt.Fprintln(a.Out, Colored(err.Error(), "error"))
			continue
		}
		if err := a.Carts.Persist(crt); err != nil {
			a.internalError(ctx, "persist cart", err)
			continue
		}

		inOrder := 0
		for _, item := range crt.Items {
			if item.Coffee == entry.Coffee {
				inOrder = item.Quantity
			}
		}
		fmt.Fprintln(a.Out, Colored(fmt.Sprintf("%s added! In order: %d", entry.Coffee, inOrder), "gray"))
	}
}

const cartHelpText = "\nThis is your cart. You can update your items quantity with these shortcuts:\n\n  - To ADD an item: Use '-a' or '--add' (Macchiato -a 3)\n  - To DELETE an item: Use '-d' or '--delete' (Americano -d 1)\n  - To pay: Use '-p' or '--pay' (-p)\n"

// openCart runs the "-c" view/modify loop.
func (a *App) openCart(ctx context.Context) {
	sess := a.currentSession()
	if sess == nil {
		return
	}

	crt, err := a.Carts.Load(sess.CardID)
	if err != nil {
		a.internalError(ctx, "load cart", err)
		return
	}
	if len(crt.Items) == 0 {
		fmt.Fprintln(a.Out, Colored("Your cart is currently empty. To add items into it, type '-o|--order'.", "gray"))
		return
	}

	fmt.Fprintln(a.Out, Colored("\n*** Your Cart ***", "gray"))
	fmt.Fprintln(a.Out, Colored(cartHelpText, "gray"))
	fmt.Fprintln(a.Out, RenderCart(crt.Items, a.Carts.Total(crt).StringFixed(2)))

	for {
		input, ok := a.prompt("Modify Cart ('-e' to exit): ")
		if !ok || input == "-e" || input == "--exit" {
			return
		}

		switch input {
		case "-p", "--pay":
			a.pay(ctx, sess, crt)
			if len(crt.Items) == 0 {
				return
			}
			continue
		case "-h", "--help":
			fmt.Fprintln(a.Out, Colored(cartHelpText, "gray"))
			continue
		}

		line, err := ParseCartLine(input)
		if err != nil {
			fmt.Fprintln(a.Out, Colored(err.Error(), "error"))
			continue
		}
		a.modifyCart(ctx, crt, line)
	}
}

// modifyCart applies one add/delete command and persists the result.
// Adding targets items already in the cart, matching the cart prompt's
// contract (new coffees enter through the order flow).
func (a *App) modifyCart(ctx context.Context, crt *models.Cart, line CartLine) {
	inCart := false
	for _, item := range crt.Items {
		if item.Coffee == line.Coffee {
			inCart = true
			break
		}
	}
	if !inCart {
		fmt.Fprintln(a.Out, Colored(fmt.Sprintf("\nError: Could not find '%s' in your cart!\n", line.Coffee), "error"))
		return
	}

	plural := ""
	if line.Quantity > 1 {
		plural = "s"
	}

	if line.Add {
		entry, _ := a.Menu.Lookup(line.Coffee)
		if err := a.Carts.AddQuantity(crt, line.Coffee, entry.Price, line.Quantity); err != nil {
			fmt.Fprintln(a.Out, Colored(err.Error(), "error"))
			return
		}
	} else {
		if err := a.Carts.RemoveQuantity(crt, line.Coffee, line.Quantity); err != nil {
			switch {
			case errors.Is(err, cart.ErrInsufficientQuantity):
				fmt.Fprintln(a.Out, Colored(fmt.Sprintf("\nCould not delete %d %s%s from your cart, you don't have that many.\n", line.Quantity, line.Coffee, plural), "alert"))
			case errors.Is(err, cart.ErrItemNotFound):
				fmt.Fprintln(a.Out, Colored(fmt.Sprintf("\nError: Could not find '%s' in your cart!\n", line.Coffee), "error"))
			default:
				a.internalError(ctx, "remove from cart", err)
			}
			return
		}
	}

	if err := a.Carts.Persist(crt); err != nil {
		a.internalError(ctx, "persist cart", err)
		return
	}

	remaining := "None"
	for _, item := range crt.Items {
		if item.Coffee == line.Coffee {
			remaining = fmt.Sprint(item.Quantity)
		}
	}
	verb := "deleted"
	if line.Add {
		verb = "added"
	}
	fmt.Fprintln(a.Out, Colored(fmt.Sprintf("\n%d %s%s has been %s successfully! Currently in order: %s\n", line.Quantity, line.Coffee, plural, verb, remaining), "gray"))
}

// pay is the checkout confirmation flow.
func (a *App) pay(ctx context.Context, sess *models.Session, crt *models.Cart) {
	log := logging.FromContext(ctx)

	total := a.Carts.Total(crt)
	balance, err := a.Ledger.GetBalance(sess.CardID)
	if err != nil {
		a.internalError(ctx, "read balance", err)
		return
	}

	fmt.Fprintln(a.Out, Colored("\n*** Checkout Section ***\n", "gray"))
	fmt.Fprintln(a.Out, Colored(fmt.Sprintf("Hey %s! Ready for your coffee? Check everything is correct and if so, just type 'Y' to pay!\n", sess.First), "gray"))
	fmt.Fprintln(a.Out, "Client:", sess.First)
	fmt.Fprintln(a.Out, "Order Total:", Colored(total.StringFixed(2), "success"))
	fmt.Fprintln(a.Out, "Your Balance:", Colored(balance.StringFixed(2), "alert"))
	fmt.Fprintln(a.Out)

	proceed, ok := a.prompt("Pay? (Y/N) ")
	if !ok || strings.ToUpper(proceed) != "Y" {
		return
	}

	ord, err := a.Orders.Checkout(ctx, crt, sess.First+" "+sess.Last)
	if err != nil {
		if errors.Is(err, order.ErrInsufficientFunds) {
			fmt.Fprintln(a.Out, Colored("\nYou don't have enough balance!\n", "error"))
		} else {
			a.internalError(ctx, "checkout", err)
		}
		return
	}

	fmt.Fprintln(a.Out, Colored("\nYour order has been successfully processed!\n", "success"))
	fmt.Fprintln(a.Out, Colored("You can pick up your items at the Harvoffe store whenever you're ready.", "gray"))
	fmt.Fprintln(a.Out, Colored("Your order ID is:", "gray"), ord.ID, Colored("(You will need this ID to claim your order)\n", "gray"))

	wantTicket, ok := a.prompt("Do you need a ticket? (Y/N) ")
	if ok && strings.ToUpper(wantTicket) == "Y" {
		if err := a.sendTicket(sess.Email, ord); err != nil {
			log.Warn("ticket email failed", "order_id", ord.ID, "error", err)
			fmt.Fprintln(a.Out, Colored("Internal error: Couldn't send email to user.", "error"))
		}
	}
}

func (a *App) orderHistory() {
	sess := a.currentSession()
	if sess == nil {
		return
	}

	orders, err := a.Orders.History(sess.CardID)
	if err != nil {
		fmt.Fprintln(a.Out, Colored(err.Error(), "error"))
		return
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.Out, Colored("You don't have any orders yet. To place an order type '-o|--order'!", "gray"))
		return
	}

	fmt.Fprintln(a.Out, Colored("\n*** Order History ***\n\nThis section displays a list of all your past orders, sorted from the latest to the oldest.\nYou can request a printable ticket for any order using its ID and the shortcut '-t' or '--ticket':\n\n- Usecase: '--ticket [ORDER_ID]'\n", "gray"))
	fmt.Fprintln(a.Out, RenderHistory(orders))
}

func (a *App) requestTicket(ctx context.Context, orderID string) {
	log := logging.FromContext(ctx)

	sess := a.currentSession()
	if sess == nil {
		return
	}

	confirm, ok := a.prompt(Colored(fmt.Sprintf("\nRequest ticket for order %s? (Y/N) ", orderID), "gray"))
	if !ok || strings.ToUpper(confirm) != "Y" {
		return
	}

	ord, err := a.Orders.Get(sess.CardID, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			fmt.Fprintln(a.Out, Colored("\nCouldn't find an order associated to that ID.\n", "error"))
		} else {
			a.internalError(ctx, "read order", err)
		}
		return
	}

	if err := a.sendTicket(sess.Email, ord); err != nil {
		log.Warn("ticket email failed", "order_id", ord.ID, "error", err)
		fmt.Fprintln(a.Out, Colored("Internal error: Couldn't send email to user.", "error"))
		return
	}
	fmt.Fprintln(a.Out, Colored("\nDone!", "success"))
	fmt.Fprintln(a.Out, Colored("\nYour ticket has been successfully sent to your email!\n", "gray"))
}

func (a *App) sendTicket(email string, ord *models.Order) error {
	if !a.Mail.Configured() {
		fmt.Fprintln(a.Out, Colored("Email is not configured; here is your ticket:", "alert"))
		fmt.Fprintln(a.Out, order.RenderReceipt(ord))
		return nil
	}
	return mailer.SendReceipt(a.Mail, email, ord)
}

func (a *App) internalError(ctx context.Context, op string, err error) {
	logging.FromContext(ctx).Error(op, "error", err)
	fmt.Fprintln(a.Out, Colored(fmt.Sprintf("Internal error: %s failed. Send this to the developer: %v", op, err), "error"))
}
