package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aouyang1/flickrframe/api/client"
	"github.com/aouyang1/flickrframe/slideshow"
)

var (
	photosWidth   int
	photosShuffle bool
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "List the photos the slideshow would show, with the image url picked for a width.",
	RunE: func(cmd *cobra.Command, args []string) error {
		width := photosWidth
		if width <= 0 {
			width = cfg.ViewportWidth
		}
		return listPhotos(cmd.Context(), cmd.OutOrStdout(), client.NewPhotoClient(cfg.ProxyURL), width, photosShuffle)
	},
}

func init() {
	photosCmd.Flags().IntVar(&photosWidth, "width", 0, "viewport width to pick image urls for (default FRAME_VIEWPORT_WIDTH)")
	photosCmd.Flags().BoolVar(&photosShuffle, "shuffle", false, "list the photos in random order")
}

func listPhotos(ctx context.Context, w io.Writer, src slideshow.PhotoSource, width int, shuffle bool) error {
	photos, err := slideshow.Initialize(ctx, src, width, shuffle, nil)
	if err != nil {
		return err
	}

	for i, p := range photos {
		url, _ := slideshow.BestImageURL(p, width)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, p.ID, p.Title, url)
	}
	return nil
}
