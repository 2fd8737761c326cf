// Command voxelkeygen generates and inspects the symmetric key that
// protects network.encryptionKeyBase64 traffic, optionally wrapping a
// copy of it at rest with a passphrase-derived keystore entry.
package main

import (
	"crypto/sha256"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/voxelcore/voxelserver/internal/codec"
	"github.com/voxelcore/voxelserver/internal/config"
)

const defaultKeystorePath = "./data/keys/network.key"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "generate":
		generateCmd(args)
	case "show":
		showCmd(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("voxelkeygen - network encryption key management")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  voxelkeygen generate [flags]  - generate a new network encryption key")
	fmt.Println("  voxelkeygen show [flags]      - decode and fingerprint a keystore file")
	fmt.Println()
	fmt.Println("Run 'voxelkeygen <command> -h' for command-specific flags")
}

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	kind := fs.String("kind", "chacha20poly1305", "encryption kind: none, aes256, or chacha20poly1305")
	output := fs.String("output", defaultKeystorePath, "where to write the keystore file; empty to skip writing")
	noPassphrase := fs.Bool("no-passphrase", false, "store the key as bare base64 instead of passphrase-wrapping it")
	force := fs.Bool("force", false, "overwrite an existing keystore file without prompting")
	fs.Parse(args)

	encryption, err := parseEncryption(*kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxelkeygen: %v\n", err)
		os.Exit(1)
	}

	if *output != "" && !*force {
		if _, err := os.Stat(*output); err == nil {
			fmt.Printf("%s already exists.\n", *output)
			fmt.Print("Overwrite? [y/N]: ")
			var response string
			fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("Aborted.")
				return
			}
		}
	}

	key, err := codec.GenerateKey(encryption)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxelkeygen: generate key: %v\n", err)
		os.Exit(1)
	}

	encoded := base64.StdEncoding.EncodeToString(key)
	fmt.Printf("Generated a %s key.\n\n", encryption)
	fmt.Println("network.encryptionKeyBase64:")
	fmt.Printf("  %s\n", encoded)

	if len(key) > 0 {
		fingerprint := sha256.Sum256(key)
		fmt.Println()
		fmt.Printf("Fingerprint: SHA256:%x\n", fingerprint[:8])
	}

	if *output == "" {
		return
	}

	passphrase := ""
	if !*noPassphrase && len(key) > 0 {
		passphrase, err = readPassphraseWithConfirmation()
		if err != nil {
			fmt.Fprintf(os.Stderr, "voxelkeygen: %v\n", err)
			os.Exit(1)
		}
	}

	if err := config.SaveEncryptionKey(key, *output, passphrase); err != nil {
		fmt.Fprintf(os.Stderr, "voxelkeygen: save keystore: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Keystore written to %s\n", *output)
	if passphrase == "" {
		fmt.Println("WARNING: keystore is NOT passphrase-protected (insecure at rest)")
	}
}

func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	keystorePath := fs.String("keystore", defaultKeystorePath, "keystore file to decode")
	fs.Parse(args)

	passphrase := ""
	if data, err := os.ReadFile(*keystorePath); err == nil && len(data) > 0 && data[0] == '{' {
		fmt.Print("Enter passphrase: ")
		passphraseBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "voxelkeygen: read passphrase: %v\n", err)
			os.Exit(1)
		}
		passphrase = string(passphraseBytes)
	}

	key, err := config.LoadEncryptionKey(*keystorePath, passphrase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxelkeygen: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("network.encryptionKeyBase64:")
	fmt.Printf("  %s\n", base64.StdEncoding.EncodeToString(key))

	if len(key) > 0 {
		fingerprint := sha256.Sum256(key)
		fmt.Println()
		fmt.Printf("Fingerprint: SHA256:%x\n", fingerprint[:8])
		fmt.Printf("Key size: %d bytes\n", len(key))
	} else {
		fmt.Println()
		fmt.Println("Key is empty (encryption kind None carries no key material)")
	}
}

func parseEncryption(kind string) (codec.Encryption, error) {
	switch kind {
	case "none":
		return codec.EncryptionNone, nil
	case "aes256":
		return codec.EncryptionAES256CBC, nil
	case "chacha20poly1305":
		return codec.EncryptionChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("unknown kind %q (want none, aes256, or chacha20poly1305)", kind)
	}
}

func readPassphraseWithConfirmation() (string, error) {
	fmt.Print("Enter passphrase to protect the keystore at rest (leave empty to skip): ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	if len(first) == 0 {
		return "", nil
	}

	fmt.Print("Confirm passphrase: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}
