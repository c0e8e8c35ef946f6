package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/zelana-network/gzel/crypto"
	"github.com/zelana-network/gzel/internal/flags"
)

// keyfile is the on-disk identity format. The seed is stored in the clear:
// these are development identities, not custody material.
type keyfile struct {
	Seed      string `json:"seed"`
	SignerPK  string `json:"signerPublicKey"`
	PrivacyPK string `json:"privacyPublicKey"`
	AccountID string `json:"accountId"`
}

type outputGenerate struct {
	AccountID string `json:"accountId"`
	Path      string `json:"path"`
}

var commandGenerate = &cli.Command{
	Name:      "generate",
	Usage:     "generate new identity keyfile",
	ArgsUsage: "[ <keyfile> ]",
	Description: `
Generate a new identity keyfile.

The keyfile holds the 64-byte seed in the clear together with the derived
public keys and account id.`,
	Flags: []cli.Flag{
		jsonFlag,
	},
	Action: func(ctx *cli.Context) error {
		keyfilepath := ctx.Args().First()
		if keyfilepath == "" {
			keyfilepath = defaultKeyfileName
		}
		if _, err := os.Stat(keyfilepath); err == nil {
			flags.Fatalf("Keyfile already exists at %s.", keyfilepath)
		} else if !os.IsNotExist(err) {
			flags.Fatalf("Error checking if keyfile exists: %v", err)
		}

		var seed [64]byte
		if _, err := rand.Read(seed[:]); err != nil {
			flags.Fatalf("Failed to read randomness: %v", err)
		}
		identity, err := crypto.NewIdentityFromSeed(seed)
		if err != nil {
			flags.Fatalf("Failed to derive identity: %v", err)
		}
		keys := identity.Keys()

		content, err := json.MarshalIndent(keyfile{
			Seed:      hex.EncodeToString(seed[:]),
			SignerPK:  hex.EncodeToString(keys.SignerPK[:]),
			PrivacyPK: hex.EncodeToString(keys.PrivacyPK[:]),
			AccountID: identity.AccountID().Hex(),
		}, "", "    ")
		if err != nil {
			flags.Fatalf("Failed to encode keyfile: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(keyfilepath), 0o700); err != nil {
			flags.Fatalf("Could not create directory %s: %v", filepath.Dir(keyfilepath), err)
		}
		if err := os.WriteFile(keyfilepath, content, 0o600); err != nil {
			flags.Fatalf("Failed to write keyfile to %s: %v", keyfilepath, err)
		}

		out := outputGenerate{
			AccountID: identity.AccountID().Hex(),
			Path:      keyfilepath,
		}
		if ctx.Bool(jsonFlag.Name) {
			mustPrintJSON(out)
		} else {
			fmt.Println("Account id:", out.AccountID)
			fmt.Println("Keyfile:   ", out.Path)
		}
		return nil
	},
}

// mustPrintJSON prints the JSON encoding of the given object and exits the
// program with an error message when the marshaling fails.
func mustPrintJSON(jsonObject interface{}) {
	str, err := json.MarshalIndent(jsonObject, "", "    ")
	if err != nil {
		flags.Fatalf("Failed to marshal JSON object: %v", err)
	}
	fmt.Println(string(str))
}
