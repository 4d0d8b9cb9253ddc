package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arlaunch/arlaunch/pkg/intent"
)

// sceneviewerCmd builds an Android Scene Viewer intent URI from flags.
var sceneviewerCmd = &cobra.Command{
	Use:   "sceneviewer",
	Short: "Build a Google Scene Viewer intent URI for a glTF model",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		page, _ := cmd.Flags().GetString("page")
		title, _ := cmd.Flags().GetString("title")
		link, _ := cmd.Flags().GetString("link")
		sound, _ := cmd.Flags().GetString("sound")
		fallbackURL, _ := cmd.Flags().GetString("fallback-url")
		fixedScale, _ := cmd.Flags().GetBool("fixed-scale")

		sv, err := intent.NewSceneViewer(file, page, intent.SceneViewerParams{
			Title:       title,
			Link:        link,
			Sound:       sound,
			FallbackURL: fallbackURL,
			Resizable:   !fixedScale,
		})
		if err != nil {
			return err
		}

		fmt.Println(sv.ToURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sceneviewerCmd)
	sceneviewerCmd.Flags().StringP("file", "f", "", "glb or gltf model URL (required)")
	sceneviewerCmd.Flags().StringP("page", "p", "", "Page URL relative references resolve against")
	sceneviewerCmd.Flags().StringP("title", "t", "", "Title shown in the Scene Viewer chrome")
	sceneviewerCmd.Flags().String("link", "", "Web page Scene Viewer offers to visit")
	sceneviewerCmd.Flags().String("sound", "", "Looping audio asset URL")
	sceneviewerCmd.Flags().String("fallback-url", "", "Where the browser goes when Scene Viewer cannot launch")
	sceneviewerCmd.Flags().Bool("fixed-scale", false, "Pin the model scale in the viewer")
	_ = sceneviewerCmd.MarkFlagRequired("file")
}
