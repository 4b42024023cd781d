// Package main submits one speaker registration from the command line.
//
//	register -api http://localhost:8080 -name "Jane Doe" -company "Acme" \
//	    -position "CTO" -email jane@acme.test -privacy-consent
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/xynexis/speaker-registration/pkg/client"
)

func main() {
	api := flag.String("api", "http://localhost:8080", "registration API base URL")
	name := flag.String("name", "", "full name")
	company := flag.String("company", "", "company name")
	position := flag.String("position", "", "position")
	email := flag.String("email", "", "email address")
	phone := flag.String("phone", "", "phone number (optional)")
	privacy := flag.Bool("privacy-consent", false, "agree to the privacy notice")
	marketing := flag.Bool("marketing-consent", false, "agree to marketing contact")
	statePath := flag.String("state", "", "cooldown state file (default: user config dir)")
	flag.Parse()

	path := *statePath
	if path == "" {
		p, err := client.DefaultCooldownPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		path = p
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ctrl := client.New(*api, client.WithCooldownStore(client.NewFileCooldownStore(path)))
	if err := ctrl.Load(ctx); err != nil {
		fail(err)
	}

	outcome, err := ctrl.Submit(ctx, client.Form{
		FullName:         *name,
		CompanyName:      *company,
		Email:            *email,
		Phone:            *phone,
		Position:         *position,
		PrivacyConsent:   *privacy,
		MarketingConsent: *marketing,
	})
	if err != nil {
		fail(err)
	}
	if outcome.Submitted {
		fmt.Println("Success! Your registration has been submitted.")
	}
}

func fail(err error) {
	var fe *client.FormError
	if errors.As(err, &fe) && fe.Err != nil {
		fmt.Fprintf(os.Stderr, "%s (%v)\n", fe.Message, fe.Err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
