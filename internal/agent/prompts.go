package agent

const systemPrompt = `You are a specialized code analysis agent that helps developers identify which files need modification for specific programming tasks. You analyze project structures and read only the files that matter to give targeted recommendations.

Do not guess at code you have not been shown. Keep recommendations actionable and consistent with the existing patterns and architecture of the project.`

const selectPrompt = `Project: %s
Folder: %s

Directory tree:
%s

Source files:
%s

Task: %s

Pick the %d files most likely to contain the logic this task touches. Reply with one path per line, exactly as listed above, and nothing else.`

const recommendPrompt = `Task: %s

Project outline:
%s

Selected files:
%s

Based on these files, provide:
1. **Primary files to modify**: the specific files that need changes
2. **Type of modifications needed**: what changes are required
3. **Integration points**: where in the code the new functionality belongs
4. **Additional considerations**: new files to create, dependencies to add, and similar

Explain briefly why each file was relevant.`
