package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// OAuth is for the google drive access.
// If successful, the Google Drive service will be returned.
// If the token file is missing, a new token is requested interactively (stdin) and saved.
//
// client_credentials.json can be downloaded from https://console.developers.google.com, under "Credentials".
func OAuth(clientCredFile, tokenFile string, readonly bool) (*drive.Service, error) {
	// scope (default: read & write access)
	scope := drive.DriveScope
	if readonly {
		scope = drive.DriveReadonlyScope
	}

	conf, err := loadOAuthConf(clientCredFile, scope)
	if err != nil {
		log.Printf("ERROR: %s/OAuth: %v", packageName, err)
		return nil, err
	}

	tok, err := loadToken(tokenFile)
	if err != nil {
		log.Printf("WARNING: %s/OAuth: %v", packageName, err)

		// get token with user interaction
		tok, err = reqNewToken(tokenFile, conf)
		if err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	service, err := drive.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("%s/OAuth: %w", packageName, err)
	}
	return service, nil
}

//--------  HELPER  --------------------------------------------------------------------------------------------------//

// loadOAuthConf loads a valid OAuth config from a file
func loadOAuthConf(file, scope string) (*oauth2.Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%s/loadOAuthConf: %w", packageName, err)
	}

	conf, err := google.ConfigFromJSON(b, scope)
	if err != nil {
		return nil, fmt.Errorf("%s/loadOAuthConf: %w", packageName, err)
	}
	return conf, nil
}

// loadToken loads a valid token from a file
func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%s/loadToken: %w", packageName, err)
	}
	defer f.Close()

	tok := new(oauth2.Token)
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("%s/loadToken: %w", packageName, err)
	}
	return tok, nil
}

// reqNewToken lets the user request a token (user interaction).
// If successful, the valid token is written to a file and returned.
func reqNewToken(file string, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("\nFollow the link and create a new token file: %v\n\nEnter the authorization code here: ", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("%s/reqNewToken: %w", packageName, err)
	}

	tok, err := conf.Exchange(context.TODO(), authCode)
	if err != nil {
		return nil, fmt.Errorf("%s/reqNewToken: %w", packageName, err)
	}

	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600) // override file
	if err != nil {
		return nil, fmt.Errorf("%s/reqNewToken: %w", packageName, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return nil, fmt.Errorf("%s/reqNewToken: %w", packageName, err)
	}
	return tok, nil
}
